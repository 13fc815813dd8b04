// Package config resolves runtime settings. Each value comes from the
// first source that sets it: command-line flag, config file, environment
// (including a .env file), built-in default.
package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultMPDHost = "localhost"
	DefaultMPDPort = 6600
	DefaultListen  = "0.0.0.0:8000"
	DefaultAssets  = "assets"
	DefaultRedisDB = 0

	defaultRedisPort = 6379
	configName       = "mpdgoweb.conf"
)

// Flags carries command-line values. Zero values mean "not given".
type Flags struct {
	ConfigPath string
	MPDHost    string
	MPDPort    int
	MPDSocket  string
	MPDPass    string
	Listen     string
	Assets     string
	LogPath    string
	Verbose    bool
}

type Config struct {
	MPDHost   string
	MPDPort   int
	MPDSocket string
	MPDPass   string

	Listen  string
	Assets  string
	LogPath string
	Verbose bool

	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// File is the config file consulted and whether it existed.
	File File
}

// File is a key=value config file.
type File struct {
	Path   string
	Data   string
	Exists bool
}

// mpdEnv is what MPD_HOST, MPD_PORT and MPD_PASSWORD resolve to.
type mpdEnv struct {
	host   string
	port   int
	socket string
	pass   string
}

// Load resolves the configuration and validates it.
func Load(f Flags) (*Config, error) {
	_ = godotenv.Load()

	file := LoadFile(f.ConfigPath)
	kv := ParseFile(file.Data)
	env := parseMPDEnv(f.Verbose)

	cfg := &Config{
		File:    file,
		Verbose: f.Verbose || kv["verbose"] == "true",

		MPDPort: firstInt(f.MPDPort, atoi(kv["mpdport"]), env.port, DefaultMPDPort),
		MPDPass: first(f.MPDPass, kv["mpdpass"], env.pass),

		Listen:  first(f.Listen, kv["listen"], os.Getenv("MPDGOWEB_LISTEN"), DefaultListen),
		Assets:  first(f.Assets, kv["assets"], os.Getenv("MPDGOWEB_ASSETS"), DefaultAssets),
		LogPath: first(f.LogPath, kv["log"]),

		RedisHost:     first(kv["redishost"], os.Getenv("REDIS_HOST")),
		RedisPort:     firstInt(atoi(kv["redisport"]), getEnvAsInt("REDIS_PORT"), defaultRedisPort),
		RedisPassword: first(kv["redispass"], os.Getenv("REDIS_PASSWORD")),
		RedisDB:       getEnvAsIntWithDefault("REDIS_DB", DefaultRedisDB),
	}
	cfg.MPDHost, cfg.MPDSocket = resolveAddr(
		[2]string{f.MPDHost, f.MPDSocket},
		[2]string{kv["mpdhost"], kv["mpdsocket"]},
		[2]string{env.host, env.socket},
	)
	if v, ok := kv["redisdb"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = n
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
} // func Load

// MPDAddr is the daemon address: the socket when one is set, host:port
// otherwise.
func (c *Config) MPDAddr() string {
	if c.MPDSocket != "" {
		return c.MPDSocket
	}
	return net.JoinHostPort(c.MPDHost, strconv.Itoa(c.MPDPort))
}

// RedisEnabled reports whether the persistent art tier is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func (c *Config) Validate() error {
	if c.MPDSocket == "" {
		if c.MPDHost == "" {
			return errors.New("mpd host is required")
		}
		if c.MPDPort < 1 || c.MPDPort > 65535 {
			return fmt.Errorf("mpd port %d out of range", c.MPDPort)
		}
	}

	_, port, err := net.SplitHostPort(c.Listen)
	if err != nil {
		return fmt.Errorf("listen address %q: %w", c.Listen, err)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("listen port %q out of range", port)
	}

	if c.RedisEnabled() {
		if c.RedisPort < 1 || c.RedisPort > 65535 {
			return fmt.Errorf("redis port %d out of range", c.RedisPort)
		}
		if c.RedisDB < 0 {
			return errors.New("REDIS_DB must not be negative")
		}
	}
	return nil
} // func (c *Config) Validate

// LoadFile reads the config file at path, or ~/.config/mpdgoweb.conf when
// path is empty. A missing file is not an error.
func LoadFile(path string) File {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return File{}
		}
		path = filepath.Join(home, ".config", configName)
	}

	f := File{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return f
	}
	f.Exists = true
	f.Data = string(data)
	return f
} // func LoadFile

// ParseFile parses key=value lines. Blank lines and lines starting with '#'
// are skipped, as are lines without '='.
func ParseFile(data string) map[string]string {
	kv := make(map[string]string)
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k != "" {
			kv[k] = strings.TrimSpace(v)
		}
	}
	return kv
} // func ParseFile

// parseMPDEnv reads MPD_HOST the way mpc does: "host", "/socket",
// "@abstract", "password@host", "password@/socket" or "password@@abstract".
func parseMPDEnv(verbose bool) mpdEnv {
	env := parseMPDHost(os.Getenv("MPD_HOST"))

	if p := os.Getenv("MPD_PORT"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			env.port = n
		} else {
			log.Printf("[config] ignoring MPD_PORT %q: %v", p, err)
		}
	}
	if pw := os.Getenv("MPD_PASSWORD"); pw != "" && env.pass == "" {
		env.pass = pw
	}

	if verbose {
		log.Printf("[config] env: host=%q port=%d socket=%q password set=%t",
			env.host, env.port, env.socket, env.pass != "")
	}
	return env
} // func parseMPDEnv

func parseMPDHost(v string) mpdEnv {
	var env mpdEnv
	switch {
	case v == "":
	case strings.HasPrefix(v, "@"):
		env.socket = v
	case strings.Contains(v, "@@"):
		pass, rest, _ := strings.Cut(v, "@@")
		env.pass = pass
		env.socket = "@" + rest
	case strings.Contains(v, "@"):
		pass, addr, _ := strings.Cut(v, "@")
		env.pass = pass
		if strings.Contains(addr, "/") {
			env.socket = addr
		} else {
			env.host = addr
		}
	case strings.Contains(v, "/"):
		env.socket = v
	default:
		env.host = v
	}
	return env
} // func parseMPDHost

// resolveAddr picks host and socket from the first source naming either,
// so a host given on the command line is not shadowed by a socket from
// the environment. Each source is {host, socket}.
func resolveAddr(sources ...[2]string) (host, socket string) {
	for _, src := range sources {
		if src[1] != "" {
			return src[0], src[1]
		}
		if src[0] != "" {
			return src[0], ""
		}
	}
	return DefaultMPDHost, ""
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstInt(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func getEnvAsInt(key string) int {
	return getEnvAsIntWithDefault(key, 0)
}

func getEnvAsIntWithDefault(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
