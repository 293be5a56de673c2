package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pippoche/svbot/internal/domain/entity"
)

// LoadMirror lee el espejo JSON del snapshot desde disco. Un archivo ausente o
// corrupto devuelve error; el arranque lo ignora y carga de red.
func LoadMirror(path string) (*entity.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer espejo: %w", err)
	}
	var s entity.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("espejo corrupto: %w", err)
	}
	if s.URLs == nil {
		s.URLs = map[string]string{}
	}
	return &s, nil
}

// SaveMirror escribe el snapshot a disco de forma atómica (archivo temporal +
// rename), para que un corte a mitad de escritura no deje un espejo corrupto.
func SaveMirror(path string, s *entity.Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("serializar espejo: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".mirror-*")
	if err != nil {
		return fmt.Errorf("crear temporal: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("escribir espejo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publicar espejo: %w", err)
	}
	return nil
}
