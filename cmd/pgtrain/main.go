// Command pgtrain trains a policy gradient policy on a contextual
// bandit and saves it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/samuelfneumann/gopg/config"
	"github.com/samuelfneumann/gopg/environment/bandit"
	"github.com/samuelfneumann/gopg/experiment"
	"github.com/samuelfneumann/gopg/experiment/checkpointer"
	"github.com/samuelfneumann/gopg/experiment/tracker"
	"github.com/samuelfneumann/gopg/policy"
	"github.com/samuelfneumann/gopg/utils/progressbar"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "pgtrain",
	Short: "Train a policy gradient policy on a contextual bandit",
	Long: `pgtrain builds an MLP policy from a configuration file and trains
it with the REINFORCE policy gradient on a contextual bandit whose best
action depends on the sign of the first observation feature.

Every configuration key may also be set with an environment variable
prefixed with PG, for example PG_LEARNING_RATE=0.01.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&cfgPath, "config", "", "Policy configuration file (yaml, json, or toml)")
	rootCmd.Flags().Int("steps", 200, "Number of policy updates")
	rootCmd.Flags().Int("batch", 64, "Environment steps collected per update")
	rootCmd.Flags().Float64("gamma", 1.0, "Discount factor")
	rootCmd.Flags().Float64("lambda", 1.0, "GAE λ")
	rootCmd.Flags().Bool("normalize", true, "Standardize advantages")
	rootCmd.Flags().String("out", "policy.bin", "File to save the trained policy to")
	rootCmd.Flags().Int("checkpoint-every", 0, "Save the policy every n updates (0 to disable)")
	rootCmd.Flags().String("returns", "", "File to save episodic returns to")
	rootCmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.Flags().Bool("progress", true, "Display a progress bar")
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %v", level,
			err)
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(lvl), nil
}

func run(cmd *cobra.Command, args []string) error {
	vp, err := config.New(cfgPath)
	if err != nil {
		return err
	}
	if err := vp.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("could not bind flags: %v", err)
	}

	// The bandit defaults to two features and two discrete actions
	vp.SetDefault("observation_dims", 2)
	vp.SetDefault("action_dims", 2)
	vp.SetDefault("discrete", true)

	logger, err := newLogger(vp.GetString("log-level"))
	if err != nil {
		return err
	}

	c, err := config.Policy(vp)
	if err != nil {
		return err
	}

	pol, err := policy.NewPG(c, policy.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("could not create policy: %v", err)
	}
	defer pol.Close()

	e, err := bandit.New(c.ObservationDims, c.ActionDims, c.Discrete,
		c.Seed+1)
	if err != nil {
		return fmt.Errorf("could not create environment: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer cancel()

	exp, returns, err := newExperiment(vp, e, pol, logger)
	if err != nil {
		return err
	}

	logger.Info().
		Int("updates", vp.GetInt("steps")).
		Int("batch", vp.GetInt("batch")).
		Bool("discrete", c.Discrete).
		Msg("starting training")

	if err := exp.Run(ctx); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	if err := exp.Save(); err != nil {
		return err
	}

	out := vp.GetString("out")
	if err := pol.Save(out); err != nil {
		return err
	}

	logger.Info().
		Int("updates", exp.Updates()).
		Int("episodes", returns.Episodes()).
		Float64("mean_return", returns.RecentMean(vp.GetInt("batch"))).
		Str("path", out).
		Msg("saved policy")
	return nil
}

// newExperiment creates the online experiment described by vp
func newExperiment(vp *viper.Viper, e *bandit.Bandit, pol *policy.PG,
	logger zerolog.Logger) (*experiment.Online, *tracker.Return, error) {
	c := experiment.Config{
		Updates:             vp.GetInt("steps"),
		StepsPerUpdate:      vp.GetInt("batch"),
		Gamma:               vp.GetFloat64("gamma"),
		Lambda:              vp.GetFloat64("lambda"),
		NormalizeAdvantages: vp.GetBool("normalize"),
	}

	returns := tracker.NewReturn(vp.GetString("returns"))
	opts := []experiment.Option{
		experiment.WithLogger(logger),
		experiment.WithTrackers(returns),
	}

	if n := vp.GetInt("checkpoint-every"); n > 0 {
		filename := checkpointer.FilenameEnumerator(0, vp.GetString("out")+
			".ckpt", "")
		check, err := checkpointer.NewNStep(n, pol, filename)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, experiment.WithCheckpointers(check))
	}

	if vp.GetBool("progress") {
		bar := progressbar.New(os.Stdout, 40, c.Updates)
		opts = append(opts, experiment.WithCallback(
			func(update int, l policy.Log) {
				bar.Increment()
				bar.SetStatus("loss: %.4f | return: %.3f", l[policy.ActorLoss],
					returns.RecentMean(c.StepsPerUpdate))
				if err := bar.Display(); err != nil {
					logger.Warn().Err(err).Msg("could not display progress")
				}
			}))
	}

	exp, err := experiment.NewOnline(e, pol, c, opts...)
	if err != nil {
		return nil, nil, err
	}
	return exp, returns, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
