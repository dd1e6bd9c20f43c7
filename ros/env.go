package ros

import (
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Environment is the ROS_* process environment a node reads on startup.
type Environment struct {
	MasterURI string `env:"ROS_MASTER_URI" envDefault:"http://localhost:11311"`
	Hostname  string `env:"ROS_HOSTNAME"`
	IP        string `env:"ROS_IP"`
	Namespace string `env:"ROS_NAMESPACE"`
	Home      string `env:"ROS_HOME"`
	LogDir    string `env:"ROS_LOG_DIR"`
}

func loadEnvironment() (Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return e, err
	}
	if e.Home == "" {
		e.Home = filepath.Join(os.Getenv("HOME"), ".ros")
	}
	if e.LogDir == "" {
		e.LogDir = filepath.Join(e.Home, "log")
	}
	return e, nil
}

// determineHost returns the name other nodes should use to reach this one
// and whether it only resolves to the loopback interface.
func (e Environment) determineHost() (string, bool) {
	if e.Hostname != "" {
		return e.Hostname, e.Hostname == "localhost"
	}
	if e.IP != "" {
		return e.IP, isLoopback(e.IP)
	}
	if name, err := os.Hostname(); err == nil && name != "" && !strings.HasPrefix(name, "localhost") {
		return name, false
	}
	return "127.0.0.1", true
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
