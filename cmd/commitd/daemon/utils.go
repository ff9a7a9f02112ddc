package daemon

import (
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/commitd-io/commitd/util"
)

func getHomePath(cmd *cobra.Command) (string, error) {
	return getCleanPath(cmd, homeFlag)
}

func getCleanPath(cmd *cobra.Command, flag string) (string, error) {
	rawPath, err := cmd.Flags().GetString(flag)
	if err != nil {
		return "", err
	}

	cleanPath, err := filepath.Abs(rawPath)
	if err != nil {
		return "", err
	}

	return util.CleanAndExpandPath(cleanPath), nil
}

func getHexFlag(cmd *cobra.Command, flag string) ([]byte, error) {
	raw, err := cmd.Flags().GetString(flag)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid hex in --%s: %w", flag, err)
	}

	return b, nil
}
