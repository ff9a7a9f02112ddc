package daemon

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/lightningnetwork/lnd/kvdb"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/commitd-io/commitd/auth"
	"github.com/commitd-io/commitd/log"
	"github.com/commitd-io/commitd/registry"
	"github.com/commitd-io/commitd/registry/config"
	"github.com/commitd-io/commitd/types"
)

func NewCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit [principal-hex] [commitment-hex]",
		Short: "Record a commitment for the given principal.",
		Args:  cobra.ExactArgs(2),
		RunE:  commitFn,
	}

	cmd.Flags().String(proofFlag, "", "Hex-encoded authorization proof (required with strict proofs)")

	return cmd
}

func NewCommitFromCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit-from [caller-hex] [on-behalf-of-hex] [commitment-hex]",
		Short: "Record a commitment on behalf of another principal.",
		Long: "Record a commitment on behalf of another principal. The proof must be a " +
			"BIP-340 signature (or a registered delegated proof) over the commit tuple digest.",
		Args: cobra.ExactArgs(3),
		RunE: commitFromFn,
	}

	cmd.Flags().String(namespaceFlag, "", "Commitment namespace")
	cmd.Flags().String(extraDataFlag, "", "Hex-encoded opaque extra data carried to the notification")
	cmd.Flags().String(valueFlag, "", "Attached value amount passed through untouched")
	cmd.Flags().String(proofFlag, "", "Hex-encoded authorization proof")

	return cmd
}

func commitFn(cmd *cobra.Command, args []string) error {
	principal, err := types.PrincipalFromHex(args[0])
	if err != nil {
		return err
	}
	commitment, err := types.CommitmentFromHex(args[1])
	if err != nil {
		return err
	}
	proof, err := getHexFlag(cmd, proofFlag)
	if err != nil {
		return err
	}

	reg, db, _, err := loadLocalRegistry(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	orderingValue, err := reg.CommitFrom(registry.CommitRequest{
		Caller:     principal,
		OnBehalfOf: principal,
		Commitment: commitment,
		Value:      sdkmath.ZeroInt(),
		Proof:      proof,
	})
	if err != nil {
		return err
	}

	cmd.Printf("accepted commitment %s with ordering value %d\n", commitment.MarshalHex(), orderingValue)

	return nil
}

func commitFromFn(cmd *cobra.Command, args []string) error {
	caller, err := types.PrincipalFromHex(args[0])
	if err != nil {
		return err
	}
	onBehalfOf, err := types.PrincipalFromHex(args[1])
	if err != nil {
		return err
	}
	commitment, err := types.CommitmentFromHex(args[2])
	if err != nil {
		return err
	}

	namespace, err := cmd.Flags().GetString(namespaceFlag)
	if err != nil {
		return err
	}
	extraData, err := getHexFlag(cmd, extraDataFlag)
	if err != nil {
		return err
	}
	proof, err := getHexFlag(cmd, proofFlag)
	if err != nil {
		return err
	}

	value := sdkmath.ZeroInt()
	if rawValue, err := cmd.Flags().GetString(valueFlag); err != nil {
		return err
	} else if rawValue != "" {
		parsed, ok := sdkmath.NewIntFromString(rawValue)
		if !ok {
			return fmt.Errorf("invalid value amount %q", rawValue)
		}
		value = parsed
	}

	reg, db, _, err := loadLocalRegistry(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	orderingValue, err := reg.CommitFrom(registry.CommitRequest{
		Caller:     caller,
		OnBehalfOf: onBehalfOf,
		Namespace:  []byte(namespace),
		Commitment: commitment,
		ExtraData:  extraData,
		Value:      value,
		Proof:      proof,
	})
	if err != nil {
		return err
	}

	cmd.Printf("accepted commitment %s for %s with ordering value %d\n",
		commitment.MarshalHex(), onBehalfOf.MarshalHex(), orderingValue)

	return nil
}

func loadLocalRegistry(cmd *cobra.Command) (*registry.LocalRegistry, kvdb.Backend, *zap.Logger, error) {
	homePath, err := getHomePath(cmd)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load home flag: %w", err)
	}

	cfg, err := config.LoadConfig(homePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config at %s: %w", homePath, err)
	}

	logger, err := log.NewRootLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load the logger: %w", err)
	}

	dbBackend, err := cfg.DatabaseConfig.GetDBBackend()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create db backend: %w", err)
	}

	authorizer := auth.NewAuthorizer(cfg.StrictProofs, auth.NewDelegatedVerifier(), logger)

	reg, err := registry.NewLocalRegistry(dbBackend, authorizer, cfg.CommitmentTTL, logger)
	if err != nil {
		_ = dbBackend.Close()

		return nil, nil, nil, fmt.Errorf("failed to create commitment registry: %w", err)
	}

	return reg, dbBackend, logger, nil
}
