package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/babylonlabs-io/nft-staking/internal/config"
	"github.com/babylonlabs-io/nft-staking/internal/observability/tracing"
	"github.com/babylonlabs-io/nft-staking/internal/services"
	"github.com/babylonlabs-io/nft-staking/internal/types"
)

// assetOperation is an operation a caller runs on one asset of a collection.
type assetOperation func(ctx context.Context, svc *services.Service, collection, caller, asset types.Identity) (string, error)

func assetCmd(use, short string, op assetOperation) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAssetOperation(cmd, op)
		},
	}

	addIdentityFlag(cmd, "caller", "identity of the asset owner")
	addIdentityFlag(cmd, "collection", "collection identity")
	addIdentityFlag(cmd, "asset", "asset identity")

	return cmd
}

func runAssetOperation(cmd *cobra.Command, op assetOperation) error {
	ctx := tracing.InjectTraceID(cmd.Context())

	ids := make(map[string]types.Identity, 3)
	for _, name := range []string{"caller", "collection", "asset"} {
		id, err := identityFlag(cmd, name)
		if err != nil {
			return err
		}
		ids[name] = id
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

	out, err := op(ctx, service, ids["collection"], ids["caller"], ids["asset"])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func StakeCmd() *cobra.Command {
	return assetCmd("stake", "Stakes an asset into its collection vault",
		func(ctx context.Context, svc *services.Service, collection, caller, asset types.Identity) (string, error) {
			position, err := svc.Stake(ctx, collection, caller, asset)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("position: %s", position.ID), nil
		})
}

func ClaimCmd() *cobra.Command {
	return assetCmd("claim", "Claims the rewards earned by a staked asset",
		func(ctx context.Context, svc *services.Service, collection, caller, asset types.Identity) (string, error) {
			amount, err := svc.Claim(ctx, collection, caller, asset)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("claimed: %d", amount), nil
		})
}

func UnstakeCmd() *cobra.Command {
	return assetCmd("unstake", "Claims the rewards of a staked asset and returns it to its owner",
		func(ctx context.Context, svc *services.Service, collection, caller, asset types.Identity) (string, error) {
			amount, err := svc.Unstake(ctx, collection, caller, asset)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("claimed: %d", amount), nil
		})
}
