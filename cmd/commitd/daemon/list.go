package daemon

import (
	"encoding/hex"

	"github.com/spf13/cobra"
)

func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List live commitment records.",
		Args:  cobra.NoArgs,
		RunE:  listFn,
	}

	cmd.Flags().String(namespaceFlag, "", "Only list records within this namespace")

	return cmd
}

func listFn(cmd *cobra.Command, _ []string) error {
	namespace, err := cmd.Flags().GetString(namespaceFlag)
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

	var filter []byte
	if namespace != "" {
		filter = []byte(namespace)
	}

	records, err := reg.Records(filter)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		cmd.Println("no live commitments")

		return nil
	}

	for _, record := range records {
		ns := "<default>"
		if len(record.Namespace) > 0 {
			ns = string(record.Namespace)
		}
		cmd.Printf("%d\t%s\t%s\tnamespace=%s\textra=%s\tcreated=%s\n",
			record.OrderingValue,
			record.Principal.MarshalHex(),
			record.Commitment.MarshalHex(),
			ns,
			hex.EncodeToString(record.ExtraData),
			record.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		)
	}

	return nil
}
