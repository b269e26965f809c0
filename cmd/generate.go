package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/examgen/internal/client"
	"github.com/abhisek/examgen/internal/modelout"
	"github.com/abhisek/examgen/internal/prompt"
	"github.com/abhisek/examgen/internal/questions"
	"github.com/abhisek/examgen/internal/session"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate exam questions through a running examgen server",
	Example: `  examgen generate --subject Biology --grade 9 --difficulty hard --type multiple-choice --count 10
  examgen generate --subject History --grade 7 --file chapter3.pdf --format text --answers
  examgen generate --subject Math --grade 5 --in exam.json --append 3 --instruction "word problems" --out exam.json`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.String("subject", "", "Exam subject (required)")
	f.String("grade", "", "Grade or level (required)")
	f.String("difficulty", prompt.DifficultyMedium, "easy, medium or hard")
	f.String("type", prompt.TypeMixed, "multiple-choice, fill-in-the-blank, essay or mixed")
	f.Int("count", prompt.DefaultCount, "Number of questions")
	f.String("topic", "", "Optional topic focus")
	f.String("file", "", "Source document (.txt, .pdf or .docx, max 5 MB)")
	f.String("in", "", "Existing exam JSON to load before generating")
	f.Int("append", 0, "Append this many questions to the loaded exam instead of replacing it")
	f.String("append-type", "", "Question type for appended questions (defaults to --type)")
	f.String("instruction", "", "Extra instruction for appended questions")
	f.String("endpoint", "", "Generation endpoint (overrides EXAMGEN_ENDPOINT)")
	f.Int("retries", client.DefaultMaxRetries, "Retries on network errors and 5xx answers")
	f.Duration("backoff", client.DefaultInitialBackoff, "Wait before the first retry; doubles on each retry")
	f.StringP("out", "o", "", "Write the exam to this file instead of stdout")
	f.String("format", "json", "Output format: json or text")
	f.Bool("answers", false, "Include the answer key in text output")

	_ = generateCmd.MarkFlagRequired("subject")
	_ = generateCmd.MarkFlagRequired("grade")
}

type examFile struct {
	Questions questions.Set `json:"questions"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	format, _ := flags.GetString("format")
	if format != "json" && format != "text" {
		return fmt.Errorf("unknown format %q (want json or text)", format)
	}

	endpoint, _ := flags.GetString("endpoint")
	if endpoint == "" {
		endpoint = os.Getenv("EXAMGEN_ENDPOINT")
	}
	retries, _ := flags.GetInt("retries")
	backoff, _ := flags.GetDuration("backoff")
	c := client.New(endpoint, client.WithMaxRetries(retries), client.WithInitialBackoff(backoff))

	ctrl := session.New(c)

	form := session.Form{}
	form.Subject, _ = flags.GetString("subject")
	form.Grade, _ = flags.GetString("grade")
	form.Difficulty, _ = flags.GetString("difficulty")
	form.QuestionType, _ = flags.GetString("type")
	form.Topic, _ = flags.GetString("topic")
	form.Count, _ = flags.GetInt("count")
	if err := ctrl.SetForm(form); err != nil {
		return err
	}

	if path, _ := flags.GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read source document: %w", err)
		}
		if err := ctrl.Attach(filepath.Base(path), data, ""); err != nil {
			return err
		}
	}

	if path, _ := flags.GetString("in"); path != "" {
		set, err := loadExam(path)
		if err != nil {
			return err
		}
		if err := ctrl.Load(set); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	appendCount, _ := flags.GetInt("append")
	var err error
	if appendCount > 0 {
		opts := session.AppendOptions{Count: appendCount}
		opts.Type, _ = flags.GetString("append-type")
		opts.Instruction, _ = flags.GetString("instruction")
		err = ctrl.Append(ctx, opts)
	} else {
		err = ctrl.Generate(ctx)
	}
	if err != nil {
		return err
	}

	set := ctrl.Questions()
	fmt.Fprintf(cmd.ErrOrStderr(), "%d questions (%s)\n", len(set), time.Since(start).Round(time.Millisecond))

	answers, _ := flags.GetBool("answers")
	if path, _ := flags.GetString("out"); path != "" {
		return writeExamFile(path, set, format, answers)
	}
	return writeExam(cmd.OutOrStdout(), set, format, answers)
}

// writeExamFile writes the exam to path. A failed close is reported since
// it can mean the exam never reached the disk.
func writeExamFile(path string, set questions.Set, format string, answers bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := writeExam(f, set, format, answers); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// loadExam reads a saved exam. The file goes through the same tolerant
// parser and validator as a service reply.
func loadExam(path string) (questions.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exam: %w", err)
	}
	parsed, err := modelout.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	batch, err := questions.Validate(parsed)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return batch.Questions, nil
}

func writeExam(w io.Writer, set questions.Set, format string, answers bool) error {
	if format == "text" {
		return questions.Render(w, set, questions.RenderOptions{AnswerKey: answers})
	}
	if set == nil {
		set = questions.Set{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(examFile{Questions: set})
}
