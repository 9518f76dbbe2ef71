package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/babylonlabs-io/nft-staking/internal/config"
	"github.com/babylonlabs-io/nft-staking/internal/observability/tracing"
)

func ShowCollectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show-collection",
		Short: "Prints the registry of a collection, or of all collections",
		Args:  cobra.ExactArgs(0),
		RunE:  showCollection,
	}

	cmd.Flags().String("collection", "", "collection identity, all collections if empty")
	cmd.Flags().Bool("raw", false, "dump the stored document")

	return cmd
}

func showCollection(cmd *cobra.Command, _ []string) error {
	ctx := tracing.InjectTraceID(cmd.Context())

	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return err
	}
	service, cleanup, err := newCommandService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	value, err := cmd.Flags().GetString("collection")
	if err != nil {
		return err
	}
	if value == "" {
		registries, err := service.ListCollections(ctx)
		if err != nil {
			return err
		}
		return printValue(cmd, registries)
	}

	collection, err := identityFlag(cmd, "collection")
	if err != nil {
		return err
	}
	registry, err := service.GetCollection(ctx, collection)
	if err != nil {
		return err
	}
	return printValue(cmd, registry)
}

func ShowPositionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show-position",
		Short: "Prints the stake position of an asset and what it would pay now",
		Args:  cobra.ExactArgs(0),
		RunE:  showPosition,
	}

	addIdentityFlag(cmd, "collection", "collection identity")
	addIdentityFlag(cmd, "asset", "asset identity")
	cmd.Flags().Bool("raw", false, "dump the stored document")

	return cmd
}

func showPosition(cmd *cobra.Command, _ []string) error {
	ctx := tracing.InjectTraceID(cmd.Context())

	collection, err := identityFlag(cmd, "collection")
	if err != nil {
		return err
	}
	asset, err := identityFlag(cmd, "asset")
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

	position, err := service.GetPosition(ctx, collection, asset)
	if err != nil {
		return err
	}
	if err := printValue(cmd, position); err != nil {
		return err
	}

	pending, err := service.PendingRewards(ctx, collection, asset)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "claimable now:", pending)
	return nil
}

func BalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Prints the reward balance of a holder",
		Args:  cobra.ExactArgs(0),
		RunE:  balance,
	}

	addIdentityFlag(cmd, "collection", "collection identity")
	addIdentityFlag(cmd, "holder", "holder identity")

	return cmd
}

func balance(cmd *cobra.Command, _ []string) error {
	ctx := tracing.InjectTraceID(cmd.Context())

	collection, err := identityFlag(cmd, "collection")
	if err != nil {
		return err
	}
	holder, err := identityFlag(cmd, "holder")
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

	amount, err := service.RewardBalance(ctx, collection, holder)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), amount)
	return nil
}

// printValue writes v as indented json, or as a go-spew dump with --raw.
func printValue(cmd *cobra.Command, v any) error {
	raw, _ := cmd.Flags().GetBool("raw")
	return writeValue(cmd.OutOrStdout(), v, raw)
}

func writeValue(w io.Writer, v any, raw bool) error {
	if raw {
		spew.Fdump(w, v)
		return nil
	}

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
