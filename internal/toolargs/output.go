package toolargs

import (
	"path/filepath"
	"strings"
)

// outputPathFor places filename next to the input unless an explicit output
// folder is configured.
func outputPathFor(input, outputFolder, filename string) string {
	if strings.TrimSpace(outputFolder) != "" {
		return filepath.Join(outputFolder, filename)
	}
	if parent := filepath.Dir(input); parent != "" {
		return filepath.Join(parent, filename)
	}
	return filename
}

func inputStem(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
