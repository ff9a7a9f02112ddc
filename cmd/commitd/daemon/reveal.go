package daemon

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/commitd-io/commitd/reveal"
	"github.com/commitd-io/commitd/types"
)

func NewRevealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reveal [principal-hex] [salt-hex] [param-hex...]",
		Short: "Reveal the parameters behind a stored commitment and consume it.",
		Args:  cobra.MinimumNArgs(2),
		RunE:  revealFn,
	}

	cmd.Flags().String(namespaceFlag, "", "Commitment namespace")

	return cmd
}

func revealFn(cmd *cobra.Command, args []string) error {
	principal, err := types.PrincipalFromHex(args[0])
	if err != nil {
		return err
	}
	salt, err := hex.DecodeString(args[1])
	if err != nil {
		return fmt.Errorf("invalid salt hex: %w", err)
	}

	params := make([][]byte, 0, len(args)-2)
	for _, arg := range args[2:] {
		param, err := hex.DecodeString(arg)
		if err != nil {
			return fmt.Errorf("invalid param hex %q: %w", arg, err)
		}
		params = append(params, param)
	}

	namespace, err := cmd.Flags().GetString(namespaceFlag)
	if err != nil {
		return err
	}

	reg, db, logger, err := loadLocalRegistry(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	adapter := reveal.NewAdapter(reg, []byte(namespace), func(_ *types.CommitmentRecord, revealed ...[]byte) error {
		for i, param := range revealed {
			cmd.Printf("param[%d]: %s\n", i, hex.EncodeToString(param))
		}

		return nil
	}, logger)

	record, err := adapter.Reveal(principal, salt, params...)
	if err != nil {
		return err
	}

	cmd.Printf("consumed commitment %s (ordering value %d)\n",
		record.Commitment.MarshalHex(), record.OrderingValue)

	return nil
}
