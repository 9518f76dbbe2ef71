package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/babylonlabs-io/nft-staking/internal/config"
	"github.com/babylonlabs-io/nft-staking/internal/observability/tracing"
)

func InitCollectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-collection",
		Short: "Creates a collection owned by the caller",
		Args:  cobra.ExactArgs(0),
		RunE:  initCollection,
	}

	addIdentityFlag(cmd, "caller", "collection authority")
	cmd.Flags().String("name", "", "collection name")
	cmd.Flags().Uint64("max-supply", 0, "maximum number of assets in the collection")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("max-supply")

	return cmd
}

func initCollection(cmd *cobra.Command, _ []string) error {
	ctx := tracing.InjectTraceID(cmd.Context())

	caller, err := identityFlag(cmd, "caller")
	if err != nil {
		return err
	}
	name, err := cmd.Flags().GetString("name")
	if err != nil {
		return err
	}
	maxSupply, err := cmd.Flags().GetUint64("max-supply")
	if err != nil {
		return err
	}

	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return err
	}
	service, cleanup, err := newCommandService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	registry, err := service.InitializeCollection(ctx, caller, name, maxSupply)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "collection:", registry.ID)
	fmt.Fprintln(cmd.OutOrStdout(), "reward asset:", registry.RewardAssetID)
	return nil
}

func IssueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issues the next asset of a collection to its authority",
		Args:  cobra.ExactArgs(0),
		RunE:  issue,
	}

	addIdentityFlag(cmd, "caller", "collection authority")
	addIdentityFlag(cmd, "collection", "collection identity")

	return cmd
}

func issue(cmd *cobra.Command, _ []string) error {
	ctx := tracing.InjectTraceID(cmd.Context())

	caller, err := identityFlag(cmd, "caller")
	if err != nil {
		return err
	}
	collection, err := identityFlag(cmd, "collection")
	if err != nil {
		return err
	}

	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return err
	}
	service, cleanup, err := newCommandService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	asset, err := service.Issue(ctx, collection, caller)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "asset:", asset)
	return nil
}
