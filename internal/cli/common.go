package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mrlokans/chumash/internal/config"
)

// applyOverrides replaces configured paths with command line values.
func applyOverrides(cfg *config.Config, dbPath, contentDir string) {
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if contentDir != "" {
		cfg.Content.Dir = contentDir
		cfg.Content.BaseURL = ""
	}
}

func parseBooks(s string) ([]int, error) {
	var books []int
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid sefer id %q", part)
		}
		books = append(books, id)
	}
	return books, nil
}
