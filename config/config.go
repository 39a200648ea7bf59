package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"tromino/game"

	"github.com/adrg/xdg"
)

// DefaultFile is read when no config path is given.
const DefaultFile = "config.txt"

var cfgDir = "tromino"

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("config error: %s", e.err)
}

// Resolve returns path when it exists. A missing relative path is searched
// for under the XDG config directories as tromino/<path>.
func Resolve(path string) (string, error) {
	_, err := os.Stat(path)
	if err == nil {
		return path, nil
	}
	if !errors.Is(err, fs.ErrNotExist) || filepath.IsAbs(path) {
		return "", fmt.Errorf("failed to open config file '%s': %w", path, err)
	}
	absPath, xdgErr := xdg.SearchConfigFile(filepath.Join(cfgDir, path))
	if xdgErr != nil {
		return "", fmt.Errorf("failed to open config file '%s': %w", path, err)
	}
	return absPath, nil
}

// Parse reads whitespace separated integers. The first three are the rewards
// for clearing one, two and three lines; anything after them is ignored.
func Parse(r io.Reader) (game.RewardTable, error) {
	var table game.RewardTable
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for i := range table {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return table, fmt.Errorf("failed to read config: %w", err)
			}
			return table, &InvalidConfig{fmt.Sprintf("config must contain at least %d ints, found %d", len(table), i)}
		}
		v, err := strconv.Atoi(scanner.Text())
		if err != nil {
			return table, &InvalidConfig{fmt.Sprintf("config value %d is not an int: %q", i+1, scanner.Text())}
		}
		table[i] = v
	}
	return table, nil
}

// LoadRewardTable resolves and parses the reward table at path.
func LoadRewardTable(path string) (game.RewardTable, error) {
	absPath, err := Resolve(path)
	if err != nil {
		return game.RewardTable{}, err
	}
	f, err := os.Open(absPath)
	if err != nil {
		return game.RewardTable{}, fmt.Errorf("failed to open config file '%s': %w", absPath, err)
	}
	defer f.Close()

	table, err := Parse(f)
	if err != nil {
		return table, fmt.Errorf("failed to load '%s': %w", absPath, err)
	}
	return table, nil
}

// CheckField rejects board sizes a field cannot be built with.
func CheckField(width, height int) error {
	if width <= 0 || height <= 0 {
		return &InvalidConfig{fmt.Sprintf("field size %dx%d must be positive", width, height)}
	}
	return nil
}
