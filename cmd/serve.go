package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/examgen/internal/llm"
	"github.com/abhisek/examgen/internal/questiongen"
	"github.com/abhisek/examgen/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the question generation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		llmCfg, ok := llm.Resolve()
		if !ok {
			if err := llmCfg.Validate(); err != nil {
				return fmt.Errorf("LLM provider not configured: %w", err)
			}
			return fmt.Errorf("LLM provider not configured: set EXAMGEN_LLM_PROVIDER or GEMINI_API_KEY")
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		provider, err := llm.NewProvider(ctx, llmCfg, s.EventRepo())
		if err != nil {
			return fmt.Errorf("create LLM provider: %w", err)
		}

		genCfg := questiongen.DefaultConfig()
		genCfg.MaxTokens = llmCfg.MaxTokens
		if t, _ := cmd.Flags().GetFloat64("temperature"); cmd.Flags().Changed("temperature") {
			genCfg.Temperature = t
		}
		gen := questiongen.New(provider, genCfg)

		srvCfg := server.ConfigFromEnv()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			srvCfg.Addr = addr
		}

		logrus.WithFields(logrus.Fields{
			"provider": llmCfg.Provider,
			"timeout":  llmCfg.Timeout,
		}).Info("LLM provider ready")

		return server.Run(ctx, srvCfg, gen)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides EXAMGEN_ADDR, default :8080)")
	serveCmd.Flags().Float64("temperature", 0.7, "Sampling temperature for generation")
}
