package setup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompt keys. Flags answer prompts by key through Preset.
const (
	KeyInstallDir     = "install_dir"
	KeyDeployAddons   = "deploy_addons"
	KeyBlenderVersion = "blender_version"
	KeyAddonPath      = "addon_path"
)

// Prompter obtains a value, falling back to def when nothing is given.
type Prompter interface {
	Ask(key, question, def string) (string, error)
}

// Answerer is implemented by prompters holding answers given up front, so a
// session can honor them before deciding which question to ask.
type Answerer interface {
	Answer(key string) (string, bool)
}

// Defaults answers every prompt with its default.
type Defaults struct{}

// Ask implements Prompter.
func (Defaults) Ask(_, _, def string) (string, error) {
	return def, nil
}

// Preset answers the keys it holds and delegates the rest to Next.
type Preset struct {
	Answers map[string]string
	Next    Prompter
}

// Ask implements Prompter.
func (p *Preset) Ask(key, question, def string) (string, error) {
	if v, ok := p.Answers[key]; ok {
		return v, nil
	}
	if p.Next == nil {
		return def, nil
	}
	return p.Next.Ask(key, question, def)
}

// Answer implements Answerer.
func (p *Preset) Answer(key string) (string, bool) {
	v, ok := p.Answers[key]
	return v, ok
}

// LinePrompter reads one line per question. Empty input and end of input
// both select the default.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter returns a LinePrompter reading r and writing questions to w.
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(r), out: w}
}

// Ask implements Prompter.
func (p *LinePrompter) Ask(_, question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "? %s [%s] ", question, def)
	} else {
		fmt.Fprintf(p.out, "? %s ", question)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		fmt.Fprintln(p.out)
	}

	answer := strings.TrimSpace(line)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// IsYes interprets a yes/no answer; anything unrecognized yields def.
func IsYes(answer string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "true", "1":
		return true
	case "n", "no", "false", "0":
		return false
	default:
		return def
	}
}
