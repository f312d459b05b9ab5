package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ssb-go/internal/config"
	"ssb-go/internal/ssb"
)

const promptMarker = ">> "

// Prompter asks the user for settings on the console.
type Prompter struct {
	in  *bufio.Reader
	out *Console
}

// NewPrompter creates a Prompter reading answers from in.
func NewPrompter(in io.Reader, out *Console) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// PromptString asks for a single value. An empty answer, or the input
// ending, selects def.
func (p *Prompter) PromptString(desc, def string) (string, error) {
	p.out.Notice(fmt.Sprintf("%s (Default: '%s')", desc, def))
	p.out.Printf("%s", p.out.style(colorLightGray, promptMarker))

	answer, err := p.readLine()
	if err != nil {
		return "", err
	}

	value := def
	if answer != "" {
		value = answer
	}
	p.out.Notice(fmt.Sprintf("Using value: '%s'\n", value))
	return value, nil
}

// WaitForEnter blocks until the user presses enter or the input ends.
func (p *Prompter) WaitForEnter() error {
	_, err := p.readLine()
	return err
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptConfig walks the user through the settings a backup needs and
// returns a config with every other setting defaulted.
func (p *Prompter) PromptConfig(baseDir string) (*config.Config, error) {
	p.out.Notice("Settings file generator!\nPress ENTER to use the default value.\n")

	steam, err := p.PromptString("Path to Steam's userdata folder", DefaultSteamFolder())
	if err != nil {
		return nil, err
	}
	target, err := p.PromptString(
		"Path to a folder to copy the images to, example: 'C:/Users/MyName/Pictures/MySteamPictures/'",
		defaultTargetFolder(baseDir),
	)
	if err != nil {
		return nil, err
	}
	return config.NewConfig(baseDir, steam, target), nil
}

// LoadOrPromptConfig reads the settings file at path. When it is missing or
// unreadable and prompter is set, the user is asked for new settings;
// without a prompter that is an error. The result is written back to path
// every time so older files pick up new keys.
func LoadOrPromptConfig(path, baseDir string, prompter *Prompter) (*config.Config, error) {
	cfg, err := config.ReadFromFile(path)
	switch {
	case err == nil:
		config.ApplyDefaults(cfg, baseDir)

	case prompter == nil:
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no settings file at %s; run once without -noinput or use 'ssb config init': %w", path, err)
		}
		return nil, fmt.Errorf("loading settings: %w: %w", err, ssb.ErrConfig)

	default:
		if !errors.Is(err, fs.ErrNotExist) {
			prompter.out.Notice("Your settings file exists; but failed to load!\nPress ENTER to attempt to make a new one and continue, or CTRL-C to exit.")
			if err := prompter.WaitForEnter(); err != nil {
				return nil, err
			}
		}
		cfg, err = prompter.PromptConfig(baseDir)
		if err != nil {
			return nil, err
		}
	}

	if err := config.Save(path, cfg); err != nil {
		return nil, fmt.Errorf("saving settings: %w", err)
	}
	return cfg, nil
}

// defaultTargetFolder suggests a Pictures subfolder, or a folder next to
// the executable when there is no home directory.
func defaultTargetFolder(baseDir string) string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Pictures", "Steam Screenshots")
	}
	return filepath.Join(baseDir, "screenshots")
}
