package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Serialization writes two artifacts per run: the full scene and the
// chunk-partitioned scene. Writes are atomic (temp file + rename) so a
// failed run never leaves a partial artifact for the consumer to trip over.
//
// Coordinates are rounded to centimetres by the stages that produce them,
// so marshaling the same SceneData twice is byte-stable.

// MarshalScene encodes the full scene document.
func MarshalScene(data *SceneData) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

// MarshalChunks encodes the chunked scene document. Chunks must already be
// in (col, row) order; the encoder preserves slice order.
func MarshalChunks(chunks []Chunk) ([]byte, error) {
	return json.MarshalIndent(chunks, "", "  ")
}

// WriteScene writes the full scene artifact to path.
func WriteScene(path string, data *SceneData) error {
	buf, err := MarshalScene(data)
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return writeAtomic(path, buf)
}

// WriteChunks writes the chunked scene artifact to path.
func WriteChunks(path string, chunks []Chunk) error {
	buf, err := MarshalChunks(chunks)
	if err != nil {
		return fmt.Errorf("encode chunks: %w", err)
	}
	return writeAtomic(path, buf)
}

// writeAtomic writes buf to a temporary file in the destination directory
// and renames it into place. The rename is atomic on POSIX filesystems, so
// readers observe either no file or the complete artifact.
func writeAtomic(path string, buf []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
