package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"
)

const (
	ConfigKind          = "Config"
	ConfigApiVersion    = "caasctl.dev/v1"
	FieldManagerName    = "caasctl"
	FieldManagerGroup   = "caas.caasctl.dev"
	DefaultRunnerImage  = "ghcr.io/stackhpc/azimuth-caas-operator-ar:49bd308"
	DefaultGitImage     = "alpine/git"
	DefaultSSHSecret    = "azimuth-sshkey"
	DefaultSSHKeyPath   = "/runner/ssh/id_rsa"
	defaultConfigSubdir = ".caasctl/config"
)

type Config struct {
	metav1.TypeMeta `json:",inline"`

	// FieldManager holds the manager name and group used for server-side apply.
	FieldManager *FieldManager `json:"fieldManager,omitempty"`

	// Runner holds the container images of the provisioning job.
	Runner *Runner `json:"runner,omitempty"`

	// Environment is rendered into the runner env vars of every job.
	Environment map[string]string `json:"environment,omitempty"`

	// SSHKey holds the deployment key handed to the playbooks.
	SSHKey *SSHKey `json:"sshKey,omitempty"`
}

type FieldManager struct {
	// Name sets the field manager for the reconciled objects.
	Name string `json:"name"`

	// Group sets the owner label key prefix.
	Group string `json:"group"`
}

type Runner struct {
	// Image runs ansible-runner against the cloned project.
	Image string `json:"image"`

	// GitImage clones and checks out the playbook repository.
	GitImage string `json:"gitImage"`
}

type SSHKey struct {
	// SecretName is the Secret mounted at /runner/ssh.
	SecretName string `json:"secretName"`

	// PublicKey is injected as cluster_deploy_ssh_public_key.
	PublicKey string `json:"publicKey,omitempty"`

	// PrivateKeyPath is injected as cluster_ssh_private_key_file.
	PrivateKeyPath string `json:"privateKeyPath"`
}

// NewConfig returns a config with the default values.
func NewConfig() *Config {
	return &Config{
		TypeMeta: metav1.TypeMeta{
			Kind:       ConfigKind,
			APIVersion: ConfigApiVersion,
		},
		FieldManager: defaultFieldManager(),
		Runner:       defaultRunner(),
		Environment:  defaultEnvironment(),
		SSHKey:       defaultSSHKey(),
	}
}

func defaultFieldManager() *FieldManager {
	return &FieldManager{
		Name:  FieldManagerName,
		Group: FieldManagerGroup,
	}
}

func defaultRunner() *Runner {
	return &Runner{
		Image:    DefaultRunnerImage,
		GitImage: DefaultGitImage,
	}
}

func defaultEnvironment() map[string]string {
	return map[string]string{
		"CONSUL_HTTP_ADDR":      "zenith-consul-server.zenith:8500",
		"OS_CLOUD":              "openstack",
		"OS_CLIENT_CONFIG_FILE": "/openstack/clouds.yaml",
	}
}

func defaultSSHKey() *SSHKey {
	return &SSHKey{
		SecretName:     DefaultSSHSecret,
		PrivateKeyPath: DefaultSSHKeyPath,
	}
}

// DefaultConfigPath returns '$HOME/.caasctl/config'
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, defaultConfigSubdir), nil
}

// Read loads the config from the specified path,
// if the config file is not found, a default is returned.
func Read(configPath string) (*Config, error) {
	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("$HOME dir can't be determined, error: %w", err)
		}
		configPath = p
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return NewConfig(), nil
	}

	cfgData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(cfgData, cfg); err != nil {
		return nil, err
	}

	if cfg.FieldManager == nil {
		cfg.FieldManager = defaultFieldManager()
	}

	if cfg.Runner == nil {
		cfg.Runner = defaultRunner()
	}

	if cfg.Environment == nil {
		cfg.Environment = defaultEnvironment()
	}

	if cfg.SSHKey == nil {
		cfg.SSHKey = defaultSSHKey()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the fields required for rendering jobs are set.
func (c *Config) Validate() error {
	if c.FieldManager.Name == "" {
		return fmt.Errorf("the field manager name can't be empty")
	}

	if c.FieldManager.Group == "" {
		return fmt.Errorf("the field manager group can't be empty")
	}

	if c.Runner.Image == "" || c.Runner.GitImage == "" {
		return fmt.Errorf("the runner images can't be empty")
	}

	if c.SSHKey.SecretName == "" {
		return fmt.Errorf("the ssh key secret name can't be empty")
	}

	return nil
}

// Write saves the config at the given path, if no path is specified
// it will create or override '$HOME/.caasctl/config'.
func (c *Config) Write(configPath string) error {
	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		configPath = p
	}

	if err := os.MkdirAll(filepath.Dir(configPath), os.FileMode(0755)); err != nil {
		return err
	}

	cfgData, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, cfgData, os.FileMode(0666)); err != nil {
		return err
	}

	return nil
}
