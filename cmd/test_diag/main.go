package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/heavydiag/backend/config"
	"github.com/heavydiag/backend/logger"
	"github.com/heavydiag/backend/services"
)

type TestQuestion struct {
	ID               int    `json:"id"`
	Input            string `json:"input"`
	Context          string `json:"context,omitempty"`
	ExpectStructured bool   `json:"expect_structured"`
}

type TestResult struct {
	ID       int      `json:"id"`
	Input    string   `json:"input"`
	Pass     bool     `json:"pass"`
	Missing  []string `json:"missing,omitempty"`
	Error    string   `json:"error,omitempty"`
	Response string   `json:"response,omitempty"`
}

var defaultQuestions = []TestQuestion{
	{ID: 1, Input: "motor con agua en el aceite", Context: "Excavadora CAT 320", ExpectStructured: true},
	{ID: 2, Input: "frenos ruidosos al detenerse", Context: "Camión Volvo FMX", ExpectStructured: true},
	{ID: 3, Input: "pérdida de presión hidráulica en el brazo", ExpectStructured: true},
	{ID: 4, Input: "¿Qué viscosidad de aceite usa un motor diésel en clima frío?"},
}

func main() {
	questionsFile := flag.String("questions", "", "JSON file with test questions (defaults to a built-in set)")
	output := flag.String("out", "test_results.json", "where to save the results")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg)
	if !cfg.HasGemini() {
		fmt.Println("GEMINI_API_KEY is required")
		os.Exit(1)
	}

	questions := defaultQuestions
	if *questionsFile != "" {
		data, err := os.ReadFile(*questionsFile)
		if err != nil {
			fmt.Printf("Failed to load questions: %v\n", err)
			os.Exit(1)
		}
		if err := json.Unmarshal(data, &questions); err != nil {
			fmt.Printf("Failed to parse questions: %v\n", err)
			os.Exit(1)
		}
	}

	ai, err := services.NewGeminiService(context.Background(), services.GeminiConfig{
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.GeminiModel,
		MaxOutputTokens: cfg.GeminiMaxOutputTokens,
		Timeout:         cfg.GeminiTimeout,
	})
	if err != nil {
		fmt.Printf("Failed to create Gemini service: %v\n", err)
		os.Exit(1)
	}
	defer ai.Close()

	fmt.Printf("Testing %d questions...\n\n", len(questions))

	results := make([]TestResult, 0, len(questions))
	passed := 0
	for _, q := range questions {
		result := testSingleQuestion(ai, q)
		results = append(results, result)

		status := "✓"
		if result.Pass {
			passed++
		} else {
			status = "✗"
		}
		fmt.Printf("%s Q%d: %s\n", status, q.ID, q.Input)
		if len(result.Missing) > 0 {
			fmt.Printf("   Missing sections: %s\n", strings.Join(result.Missing, ", "))
		}
		if result.Error != "" {
			fmt.Printf("   Error: %s\n", result.Error)
		}

		// Rate limiting
		time.Sleep(300 * time.Millisecond)
	}

	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Total: %d, Passed: %d, Failed: %d\n", len(questions), passed, len(questions)-passed)

	resultData, _ := json.MarshalIndent(results, "", "  ")
	if err := os.WriteFile(*output, resultData, 0644); err != nil {
		slog.Error("Failed to save results", slog.Any("error", err))
		return
	}
	fmt.Printf("\nResults saved to %s\n", *output)
}

func testSingleQuestion(ai services.TextGenerator, q TestQuestion) TestResult {
	result := TestResult{ID: q.ID, Input: q.Input}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	response, err := ai.Generate(ctx, services.BuildDiagnosisPrompt(q.Input, q.Context))
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Response = response

	if !q.ExpectStructured {
		result.Pass = true
		return result
	}

	report := services.ParseDiagnosis(response)
	for _, s := range report.Sections() {
		if len(s.Items) == 0 {
			result.Missing = append(result.Missing, s.Title)
		}
	}
	if report.Safety == "" {
		result.Missing = append(result.Missing, services.SectionSafety)
	}
	result.Pass = len(result.Missing) == 0
	return result
}
