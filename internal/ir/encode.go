package ir

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the container format changes.
const fileSchemaVersion uint16 = 1

// filePayload is the on-disk .bir container.
type filePayload struct {
	Schema uint16      `msgpack:"schema"`
	IR     *CompilerIR `msgpack:"ir"`
}

// Encode writes the IR to w in the .bir container format.
func Encode(w io.Writer, c *CompilerIR) error {
	enc := msgpack.NewEncoder(w)
	return enc.Encode(&filePayload{Schema: fileSchemaVersion, IR: c})
}

// Decode reads a .bir container from r.
func Decode(r io.Reader) (*CompilerIR, error) {
	var payload filePayload
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("ir: decode container: %w", err)
	}
	if payload.Schema != fileSchemaVersion {
		return nil, fmt.Errorf("ir: unsupported container schema %d (want %d)", payload.Schema, fileSchemaVersion)
	}
	if payload.IR == nil {
		return nil, fmt.Errorf("ir: container carries no IR")
	}
	return payload.IR, nil
}

// EncodeFile writes the IR to path atomically: the payload lands in a temp
// file first and is renamed over the target.
func EncodeFile(path string, c *CompilerIR) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*.bir")
	if err != nil {
		return err
	}
	defer func() {
		if removeErr := os.Remove(f.Name()); removeErr != nil && !os.IsNotExist(removeErr) && err == nil {
			err = removeErr
		}
	}()
	if err := Encode(f, c); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// DecodeFile reads a .bir container from path.
func DecodeFile(path string) (*CompilerIR, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
