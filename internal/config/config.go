package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName               = "planer"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "planer.db"
	DefaultLogName        = "planer.log"
)

type Keymap struct {
	Quit     string `toml:"quit"`
	Add      string `toml:"add"`
	Up       string `toml:"up"`
	Down     string `toml:"down"`
	Toggle   string `toml:"toggle"`
	Delete   string `toml:"delete"`
	Edit     string `toml:"edit"`
	Search   string `toml:"search"`
	Sort     string `toml:"sort"`
	PrevPage string `toml:"prev_page"`
	NextPage string `toml:"next_page"`
	Confirm  string `toml:"confirm"`
	Cancel   string `toml:"cancel"`
}

type Config struct {
	DBPath         string `toml:"db_path"`
	LogPath        string `toml:"log_path"`
	HolidayYear    int    `toml:"holiday_year"`
	HolidayCountry string `toml:"holiday_country"`
	PageSize       int    `toml:"page_size"`
	ReminderLimit  int    `toml:"reminder_limit"`
	Keys           Keymap `toml:"keys"`
}

// ResolveConfigPath returns the config file location under the XDG
// config home.
func ResolveConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, DefaultConfigFileName)
}

// LoadOrCreate reads the config file, writing one with defaults on
// first launch.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyFallbacks()
	return cfg, nil
}

func (c *Config) applyFallbacks() {
	if c.DBPath == "" {
		c.DBPath = defaultDBPath()
	}
	if c.LogPath == "" {
		c.LogPath = defaultLogPath()
	}
	if c.PageSize <= 0 {
		c.PageSize = 5
	}
	if c.ReminderLimit <= 0 {
		c.ReminderLimit = 5
	}
	if c.HolidayCountry == "" {
		c.HolidayCountry = "PL"
	}
	if c.HolidayYear == 0 {
		c.HolidayYear = 2025
	}
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultDBPath() string {
	return filepath.Join(xdg.DataHome, AppName, DefaultDBName)
}

func defaultLogPath() string {
	return filepath.Join(xdg.StateHome, AppName, DefaultLogName)
}

func defaultConfig() Config {
	return Config{
		DBPath:         defaultDBPath(),
		LogPath:        defaultLogPath(),
		HolidayYear:    2025,
		HolidayCountry: "PL",
		PageSize:       5,
		ReminderLimit:  5,
		Keys: Keymap{
			Quit:     "q",
			Add:      "a",
			Up:       "k",
			Down:     "j",
			Toggle:   " ",
			Delete:   "d",
			Edit:     "e",
			Search:   "/",
			Sort:     "s",
			PrevPage: "h",
			NextPage: "l",
			Confirm:  "enter",
			Cancel:   "esc",
		},
	}
}
