package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/cardroomlabs/cardroom/internal/game"
	"github.com/cardroomlabs/cardroom/internal/protocol"
	"github.com/cardroomlabs/cardroom/internal/room"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Rooms  []RoomBlock    `hcl:"room,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// RoomBlock defines a preset room that exists from startup
type RoomBlock struct {
	Name         string   `hcl:"name,label"`
	Variant      string   `hcl:"variant,optional"`
	MaxPlayers   int      `hcl:"max_players,optional"`
	SmallBlind   int      `hcl:"small_blind"`
	BigBlind     int      `hcl:"big_blind"`
	BuyInMin     int      `hcl:"buy_in_min,optional"`
	BuyInMax     int      `hcl:"buy_in_max,optional"`
	TimeLimit    int      `hcl:"time_limit,optional"`
	StudAnte     int      `hcl:"stud_ante,optional"`
	AllowedGames []string `hcl:"allowed_games,optional"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
			LogFile:  "cardroom.log",
		},
		Rooms: []RoomBlock{
			{
				Name:       "main",
				Variant:    string(game.NLH),
				MaxPlayers: 9,
				SmallBlind: 1,
				BigBlind:   2,
			},
			{
				Name:       "plo",
				Variant:    string(game.PLO),
				MaxPlayers: 6,
				SmallBlind: 1,
				BigBlind:   2,
			},
		},
	}
}

// LoadConfig loads server configuration from an HCL file, falling back
// to defaults when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Server.LogFile == "" {
		config.Server.LogFile = "cardroom.log"
	}
	for i := range config.Rooms {
		if config.Rooms[i].Variant == "" {
			config.Rooms[i].Variant = string(game.NLH)
		}
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	for _, r := range c.Rooms {
		cfg := roomConfigFromBlock(r)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("room %s: %w", r.Name, err)
		}
	}
	return nil
}

// Address returns the full listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// PresetRoomConfigs converts the configured room blocks into room
// configurations ready for seeding.
func (c *Config) PresetRoomConfigs() []room.Config {
	out := make([]room.Config, 0, len(c.Rooms))
	for _, r := range c.Rooms {
		out = append(out, roomConfigFromBlock(r))
	}
	return out
}

func roomConfigFromBlock(r RoomBlock) room.Config {
	cfg := room.Config{
		Name:       r.Name,
		Variant:    game.Variant(r.Variant),
		MaxPlayers: r.MaxPlayers,
		SmallBlind: r.SmallBlind,
		BigBlind:   r.BigBlind,
		BuyInMin:   r.BuyInMin,
		BuyInMax:   r.BuyInMax,
		TimeLimit:  r.TimeLimit,
		StudAnte:   r.StudAnte,
	}
	for _, g := range r.AllowedGames {
		cfg.AllowedGames = append(cfg.AllowedGames, game.Variant(g))
	}
	cfg.Normalize()
	return cfg
}

// roomConfigFromWire converts a client-supplied room configuration
func roomConfigFromWire(msg protocol.RoomConfig) room.Config {
	cfg := room.Config{
		MaxPlayers: msg.MaxPlayers,
		SmallBlind: msg.SmallBlind,
		BigBlind:   msg.BigBlind,
		BuyInMin:   msg.BuyInMin,
		BuyInMax:   msg.BuyInMax,
		TimeLimit:  msg.TimeLimit,
		StudAnte:   msg.StudAnte,
		Password:   msg.Password,
	}
	for _, g := range msg.AllowedGames {
		cfg.AllowedGames = append(cfg.AllowedGames, game.Variant(g))
	}
	if len(cfg.AllowedGames) > 0 {
		cfg.Variant = cfg.AllowedGames[0]
	}
	return cfg
}
