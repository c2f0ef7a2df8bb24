package system

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/tarot/internal/cli"
)

type DebugCmd struct {
	Path DebugPathCmd `cmd:"" help:"Show the profile location."`
	Keys DebugKeysCmd `cmd:"" help:"List stored keys."`
	Dump DebugDumpCmd `cmd:"" help:"Dump the raw value stored under a key."`
}

type DebugPathCmd struct{}

func (cmd *DebugPathCmd) Run(ctx *cli.Context) error {
	dir, err := ctx.Settings.ProfileDir()
	if err != nil {
		return err
	}

	// Output in machine-readable format
	output := map[string]string{
		"backend": string(ctx.Settings.StorageBackend()),
		"profile": ctx.Settings.Describe(),
		"dir":     dir,
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}

type DebugKeysCmd struct{}

func (cmd *DebugKeysCmd) Run(ctx *cli.Context) error {
	keys, err := ctx.Store.Keys(ctx.Context())
	if err != nil {
		return err
	}
	for _, k := range keys {
		ctx.Println(k)
	}
	return nil
}

type DebugDumpCmd struct {
	Key string `arg:"" help:"Storage key, e.g. tarot_readings."`
}

func (cmd *DebugDumpCmd) Run(ctx *cli.Context) error {
	value, ok, err := ctx.Store.GetRaw(ctx.Context(), cmd.Key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("key %q is not set", cmd.Key)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, value, "", "  "); err != nil {
		// Not valid JSON; show it as stored.
		ctx.Println(string(value))
		return nil
	}
	ctx.Println(out.String())
	return nil
}
