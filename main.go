package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/medgovern/medflow/agent"
	"github.com/medgovern/medflow/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cfg struct {
	config.Config
}

type cli struct {
	cfg cfg
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to config file.")
	cmd.Flags().String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	cmd.Flags().String("namespace", "medflow", "namespace used in storage")
	cmd.Flags().Int("http-port", 8080, "http port for rest endpoints")
	cmd.Flags().String("storage-impl", "redis", "implementation of underlying storage")
	cmd.Flags().Int("step-budget", 64, "max node executions per advance call")
	cmd.Flags().Int("recovery-interval", 60, "seconds between recovery sweeps")
	cmd.Flags().Int("recovery-capacity", 128, "recovery worker queue capacity")
	cmd.Flags().String("audit-log", "", "file the audit trail is appended to")
	cmd.Flags().String("seed-tenant", "default", "tenant the default templates are seeded for")
	cmd.Flags().Bool("no-seed", false, "skip seeding default workflow templates")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	var err error

	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	viper.SetConfigFile(configFile)

	if err = viper.ReadInConfig(); err != nil {
		// it's ok if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	c.cfg.RedisConfig.Addrs = strings.Split(viper.GetString("redis-addr"), ",")
	c.cfg.RedisConfig.Namespace = viper.GetString("namespace")
	c.cfg.HttpPort = viper.GetInt("http-port")
	c.cfg.StorageType = config.StorageType(viper.GetString("storage-impl"))
	c.cfg.AdvanceStepBudget = viper.GetInt("step-budget")
	c.cfg.RecoveryInterval = viper.GetInt("recovery-interval")
	c.cfg.RecoveryCapacity = viper.GetInt("recovery-capacity")
	c.cfg.AuditLogFile = viper.GetString("audit-log")
	c.cfg.SeedTenant = viper.GetString("seed-tenant")
	c.cfg.DisableSeeding = viper.GetBool("no-seed")
	return nil
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	agent, err := agent.New(c.cfg.Config, agent.Collaborators{})
	if err != nil {
		panic(err)
	}
	err = agent.Start()
	if err != nil {
		panic(err)
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	return agent.Shutdown()
}

func main() {
	cli := &cli{}

	cmd := &cobra.Command{
		Use:     "medflow",
		PreRunE: cli.setupConfig,
		RunE:    cli.run,
	}

	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
