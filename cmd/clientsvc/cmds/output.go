package cmds

import (
	"clientsvc/internal/transfer"
	"io"
)

// printRecords writes v in the format selected by --output.
func printRecords(w io.Writer, output string, v any) error {
	format, err := transfer.ParseFormat(output)
	if err != nil {
		return err
	}
	return transfer.EncodeValue(w, format, v)
}
