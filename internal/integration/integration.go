// Package integration provides embedded shell integration snippets.
package integration

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
)

// ZshFzf contains the zsh shell integration script with fzf support.
//
//go:embed zsh-fzf.sh
var ZshFzf string

// Render renders the integration script with the path of the zsh binary and
// of the running dirmap executable.
func Render() (string, error) {
	zsh, err := exec.LookPath("zsh")
	if err != nil {
		return "", fmt.Errorf("locating zsh: %w", err)
	}

	bin, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating dirmap executable: %w", err)
	}

	return render(filepath.ToSlash(zsh), filepath.ToSlash(bin))
}

func render(zsh, bin string) (string, error) {
	tmpl, err := template.New("zsh-fzf").Parse(ZshFzf)
	if err != nil {
		return "", fmt.Errorf("parsing integration script: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"ZSH": zsh,
		"BIN": bin,
	}); err != nil {
		return "", fmt.Errorf("rendering integration script: %w", err)
	}

	return buf.String(), nil
}
