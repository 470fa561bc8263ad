package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/KaramelBytes/earnings-cli/internal/assistant"
)

const sampleCSV = `Freelancer_ID,Job_Category,Platform,Experience_Level,Client_Region,Payment_Method,Job_Completed,Earnings_USD,Hourly_Rate,Job_Success_Rate,Client_Rating,Job_Duration_Days,Project_Type,Rehire_Rate,Marketing_Spend
1,Web Development,Fiverr,Beginner,Asia,Mobile Banking,180,1620,95.79,68.73,3.18,1,Fixed,40.19,53
2,App Development,Fiverr,Beginner,Australia,Mobile Banking,218,9078,86.38,97.54,3.44,54,Fixed,36.53,486
3,Web Development,PeoplePerHour,Beginner,UK,Crypto,27,3455,85.17,86.6,4.2,46,Hourly,74.05,489
4,Data Entry,Upwork,Intermediate,Asia,Bank Transfer,17,5577,75.22,88.13,4.47,41,Hourly,27.58,67
5,Digital Marketing,Upwork,Expert,Asia,Crypto,245,5898,52.12,74.83,3.02,41,Fixed,83.28,489
6,Web Development,Upwork,Expert,UK,PayPal,62,2466,71.8,86.04,4.85,22,Hourly,68.56,183
`

// isolate points HOME at a temp dir and clears credentials so runs never
// touch the real config or network.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("EARNINGS_API_KEY", "")
	t.Setenv("EARNINGS_BASE_URL", "")
	t.Setenv("EARNINGS_PROVIDER", "")
	return home
}

func writeCSV(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "freelancer_earnings.csv")
	if err := os.WriteFile(p, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

// execute runs the root command with args and stdin, returning stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	// Reset sticky flags that may persist Changed state across invocations
	rootCmd.PersistentFlags().VisitAll(func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	})
	analyzeCmd.Flags().VisitAll(func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	})
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, "", args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func TestCLI_AnalyzeByRegion(t *testing.T) {
	home := isolate(t)
	data := writeCSV(t, home)

	out := runCmd(t, "analyze", "by_region", "--data", data)
	for _, want := range []string{"client_region", "mean", "Asia", "Australia", "UK"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCLI_AnalyzeWritesOutputFile(t *testing.T) {
	home := isolate(t)
	data := writeCSV(t, home)
	target := filepath.Join(home, "reports", "corr.md")

	runCmd(t, "analyze", "job_duration_correlation", "--data", data, "--output", target)
	b, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.HasPrefix(string(b), "0.") && !strings.HasPrefix(string(b), "-0.") {
		t.Fatalf("expected a correlation value, got %q", b)
	}
}

func TestCLI_AnalyzeRejectsUnknownAction(t *testing.T) {
	home := isolate(t)
	data := writeCSV(t, home)
	if _, err := execute(t, "", "analyze", "median_everything", "--data", data); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}

func TestCLI_ActionsListsEveryIdentifier(t *testing.T) {
	isolate(t)
	out := runCmd(t, "actions")
	for _, spec := range assistant.Actions() {
		if !strings.Contains(out, string(spec.Name)) {
			t.Fatalf("missing %s in:\n%s", spec.Name, out)
		}
	}
}

func TestCLI_MissingDataFileExitsCleanly(t *testing.T) {
	home := isolate(t)
	out, err := execute(t, "", "--data", filepath.Join(home, "absent.csv"))
	if err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}
	if !strings.Contains(out, "Data file not found") {
		t.Fatalf("expected not-found message, got %q", out)
	}
	if strings.Contains(out, assistant.InputPrompt) {
		t.Fatalf("loop should not start without data")
	}
}

func TestCLI_InteractiveExitWithoutModelCalls(t *testing.T) {
	home := isolate(t)
	data := writeCSV(t, home)
	// unreachable endpoint: any model call would fail the run
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EARNINGS_BASE_URL", "http://127.0.0.1:1")

	out, err := execute(t, "\n\"quit\"\n", "--data", data)
	if err != nil {
		t.Fatalf("interactive run failed: %v", err)
	}
	if !strings.Contains(out, assistant.EmptyInput) || !strings.Contains(out, assistant.Farewell) {
		t.Fatalf("unexpected transcript:\n%s", out)
	}
}

func TestCLI_MissingAPIKeyFails(t *testing.T) {
	home := isolate(t)
	data := writeCSV(t, home)
	_, err := execute(t, "exit\n", "--data", data)
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestCLI_AskRoutesThroughModel(t *testing.T) {
	home := isolate(t)
	data := writeCSV(t, home)

	var calls int32
	var second string
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		reply := "by_region"
		if atomic.AddInt32(&calls, 1) == 2 {
			second = req.Messages[len(req.Messages)-1].Content
			reply = "  Australia leads on mean earnings.  "
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": reply}}},
		})
	}))
	defer srv.Close()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EARNINGS_BASE_URL", srv.URL)

	out := runCmd(t, "ask", "--data", data, "Which", "region", "earns", "most?")
	if strings.TrimSpace(out) != "Australia leads on mean earnings." {
		t.Fatalf("unexpected answer %q", out)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected classification and answer calls, got %d", calls)
	}
	if !strings.Contains(second, "client_region") || !strings.Contains(second, "Which region earns most?") {
		t.Fatalf("answer prompt missing table or question:\n%s", second)
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-from-env-456")
	runCmd(t, "config", "set", "model", "gpt-4o-mini")
	saved, err := os.ReadFile(filepath.Join(home, ".earnings", "config.yaml"))
	if err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	if strings.Contains(string(saved), "sk-from-env-456") || strings.Contains(string(saved), "data_path") {
		t.Fatalf("only the set key should be written, got:\n%s", saved)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "model: gpt-4o-mini") {
		t.Fatalf("expected saved model in:\n%s", out)
	}
	if _, err := execute(t, "", "config", "set", "provider", "carrier-pigeon"); err == nil {
		t.Fatalf("expected invalid provider error")
	}
}

type ipv4Server struct {
	URL string
	srv *http.Server
}

func newIPv4Server(t *testing.T, handler http.Handler) *ipv4Server {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
			t.Skipf("skipping test: cannot open local listener (%v)", err)
		}
		t.Fatalf("listen tcp4: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go func() { _ = srv.Serve(ln) }()
	return &ipv4Server{URL: "http://" + ln.Addr().String(), srv: srv}
}

func (s *ipv4Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}

func TestCLI_ModelsShowsCatalog(t *testing.T) {
	isolate(t)
	out := runCmd(t, "models")
	if !strings.Contains(out, "gpt-4.1") || !strings.Contains(out, "configured: gpt-4.1 via openai") {
		t.Fatalf("unexpected models output:\n%s", out)
	}
}
