// Package engine drives the narrative loop: it prompts the model with the
// current documents, parses the proposed updates out of the response, and
// pushes them through the state package's validate/apply/save cycle.
package engine

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/chronicle/internal/models"
	"github.com/tatianab/chronicle/internal/state"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/process_turn.txt
var processTurnPrompt string

//go:embed prompts/timeskip.txt
var timeskipPrompt string

//go:embed prompts/summarize_history.txt
var summarizeHistoryPrompt string

//go:embed prompts/settlement.txt
var settlementPrompt string

// Once the long history holds this many events the older ones are folded
// into the compressed chronicle.
const historyCompressThreshold = 12

// Events kept verbatim after a compression pass.
const historyKeepCount = 3

type Engine struct {
	client *genai.Client
	model  *genai.GenerativeModel
	log    *slog.Logger
}

func New(ctx context.Context, apiKey, modelName string) (*Engine, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Engine{
		client: client,
		model:  client.GenerativeModel(modelName),
		log:    slog.Default(),
	}, nil
}

func (e *Engine) Close() {
	e.client.Close()
}

// TurnResult is what one apply cycle produced: the narration shown to the
// player plus the full validation and apply reports.
type TurnResult struct {
	Narrative        string
	Validation       state.Result
	Report           state.Report
	SettlementReason string
}

// modelResponse is the YAML shape both turn and timeskip prompts request.
type modelResponse struct {
	Narrative string         `yaml:"narrative"`
	Summary   string         `yaml:"summary"`
	Updates   map[string]any `yaml:"updates"`
}

// ProcessTurn runs one synchronous turn: prompt, validate, apply, persist.
// The documents are only mutated through the validated edit set.
func (e *Engine) ProcessTurn(ctx context.Context, gs *models.GameState, action string) (*TurnResult, error) {
	if err := e.maybeCompressHistory(ctx, gs); err != nil {
		e.log.Warn("history compression failed", "err", err)
	}

	prompt, err := e.renderTurnPrompt(gs, action)
	if err != nil {
		return nil, err
	}
	resp, err := e.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	parsed, err := parseModelResponse(resp)
	if err != nil {
		return nil, err
	}

	result, err := e.runCycle(gs, state.ModeTurn, parsed)
	if err != nil {
		return nil, err
	}
	appendHistoryEvent(gs, action, parsed.Summary)
	if err := gs.Save(); err != nil {
		return nil, err
	}
	return result, nil
}

// Timeskip advances the simulation by five hundred years: the model
// rewrites the state absolutely and the edits are applied in timeskip mode.
func (e *Engine) Timeskip(ctx context.Context, gs *models.GameState) (*TurnResult, error) {
	prompt, err := e.renderTimeskipPrompt(gs)
	if err != nil {
		return nil, err
	}
	resp, err := e.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	parsed, err := parseModelResponse(resp)
	if err != nil {
		return nil, err
	}

	result, err := e.runCycle(gs, state.ModeTimeskip, parsed)
	if err != nil {
		return nil, err
	}
	appendEraRecord(gs, parsed.Summary)
	if err := gs.Save(); err != nil {
		return nil, err
	}
	return result, nil
}

// runCycle is the shared validate -> apply -> post-pass path for both modes.
func (e *Engine) runCycle(gs *models.GameState, mode state.Mode, parsed *modelResponse) (*TurnResult, error) {
	docs := gs.Documents()
	before := state.CaptureSettlement(docs)

	validation := state.Validate(docs, mode, parsed.Updates)
	for _, rej := range validation.Rejections {
		e.log.Warn("rejected update", "path", rej.Path, "reason", rej.Reason.String(), "detail", rej.Detail)
	}

	report := state.Apply(docs, mode, validation.Accepted)
	applySuccessionPolicy(docs, validation.Accepted, e.log)
	gs.Meta.TurnNumber++

	result := &TurnResult{
		Narrative:  parsed.Narrative,
		Validation: validation,
		Report:     report,
	}

	after := state.CaptureSettlement(docs)
	if changed, reason := state.SettlementChanged(before, after); changed {
		result.SettlementReason = reason
		// The worker reads only the snapshot and writes to a file no apply
		// cycle touches, so it needs no locking against the game loop.
		go e.regenerateSettlement(after, reason, gs.Dir())
	}
	return result, nil
}

// maybeCompressHistory folds older chronicle events into the running
// summary once the long history grows past the threshold.
func (e *Engine) maybeCompressHistory(ctx context.Context, gs *models.GameState) error {
	events, _ := gs.HistoryLong["events"].([]any)
	if len(events) <= historyCompressThreshold {
		return nil
	}

	older := events[:len(events)-historyKeepCount]
	var lines strings.Builder
	for _, ev := range older {
		rec, ok := ev.(map[string]any)
		if !ok {
			continue
		}
		fmt.Fprintf(&lines, "Turn %v: %v -> %v\n", rec["turn"], rec["action"], rec["summary"])
	}

	prompt, err := render(summarizeHistoryPrompt, map[string]any{
		"CurrentSummary": models.StringAt(gs.HistoryCompressed, "summary"),
		"NewEvents":      lines.String(),
	})
	if err != nil {
		return err
	}
	summary, err := e.generate(ctx, prompt)
	if err != nil {
		return err
	}

	gs.HistoryCompressed["summary"] = strings.TrimSpace(summary)
	gs.HistoryLong["events"] = events[len(events)-historyKeepCount:]
	return nil
}

// regenerateSettlement runs on its own goroutine after an apply cycle. It
// asks the model for a fresh settlement description and writes it atomically
// next to the documents.
func (e *Engine) regenerateSettlement(snap state.SettlementSnapshot, reason string, dir string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	prompt, err := render(settlementPrompt, map[string]any{
		"Era":            snap.Era,
		"Population":     snap.Population,
		"Size":           settlementSize(snap.Population),
		"Infrastructure": strings.Join(snap.Infrastructure, ", "),
	})
	if err != nil {
		e.log.Warn("settlement prompt failed", "err", err)
		return
	}
	text, err := e.generate(ctx, prompt)
	if err != nil {
		e.log.Warn("settlement generation failed", "reason", reason, "err", err)
		return
	}
	path := filepath.Join(dir, "settlement.txt")
	if err := models.WriteFileAtomic(path, []byte(strings.TrimSpace(text)+"\n")); err != nil {
		e.log.Warn("settlement write failed", "err", err)
		return
	}
	e.log.Info("settlement description updated", "reason", reason)
}

func settlementSize(population int) string {
	switch {
	case population < 100:
		return "camp"
	case population < 500:
		return "village"
	case population < 2000:
		return "town"
	case population < 10000:
		return "city"
	default:
		return "metropolis"
	}
}

func (e *Engine) renderTurnPrompt(gs *models.GameState, action string) (string, error) {
	data, err := promptDocuments(gs)
	if err != nil {
		return "", err
	}
	data["Action"] = action
	data["TurnNumber"] = gs.Meta.TurnNumber + 1
	data["Happiness"] = gs.Meta.PopulationHappiness
	return render(processTurnPrompt, data)
}

func (e *Engine) renderTimeskipPrompt(gs *models.GameState) (string, error) {
	data, err := promptDocuments(gs)
	if err != nil {
		return "", err
	}
	return render(timeskipPrompt, data)
}

func promptDocuments(gs *models.GameState) (map[string]any, error) {
	data := map[string]any{}
	for name, doc := range map[string]models.Document{
		"Civilization": gs.Civilization,
		"Culture":      gs.Culture,
		"Religion":     gs.Religion,
		"Technology":   gs.Technology,
		"World":        gs.World,
	} {
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal %s for prompt: %w", name, err)
		}
		data[name] = string(out)
	}
	data["History"] = historyText(gs)
	return data, nil
}

func historyText(gs *models.GameState) string {
	var b strings.Builder
	if summary := models.StringAt(gs.HistoryCompressed, "summary"); summary != "" {
		fmt.Fprintf(&b, "Summary of earlier ages: %s\n\n", summary)
	}
	events, _ := gs.HistoryLong["events"].([]any)
	for _, ev := range events {
		rec, ok := ev.(map[string]any)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "Turn %v: %v -> %v\n", rec["turn"], rec["action"], rec["summary"])
	}
	if b.Len() == 0 {
		return "(the chronicle is empty)"
	}
	return b.String()
}

func appendHistoryEvent(gs *models.GameState, action, summary string) {
	events, _ := gs.HistoryLong["events"].([]any)
	gs.HistoryLong["events"] = append(events, map[string]any{
		"turn":    gs.Meta.TurnNumber,
		"action":  action,
		"summary": summary,
	})
}

func appendEraRecord(gs *models.GameState, summary string) {
	eras, _ := gs.HistoryCompressed["eras"].([]any)
	gs.HistoryCompressed["eras"] = append(eras, map[string]any{
		"through_turn": gs.Meta.TurnNumber,
		"era":          models.StringAt(gs.Civilization, "meta", "era"),
		"summary":      summary,
	})
}

func render(tmplText string, data any) (string, error) {
	tmpl, err := template.New("prompt").Parse(tmplText)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Engine) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := e.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from model")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type %T", resp.Candidates[0].Content.Parts[0])
	}
	return string(text), nil
}

func parseModelResponse(raw string) (*modelResponse, error) {
	cleaned := extractYAML(raw)
	var parsed modelResponse
	if err := yaml.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("parse model YAML: %w\noutput was: %s", err, cleaned)
	}
	if parsed.Updates == nil {
		parsed.Updates = map[string]any{}
	}
	return &parsed, nil
}

// extractYAML strips a markdown code fence if the model wrapped its answer
// in one.
func extractYAML(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```yaml")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
