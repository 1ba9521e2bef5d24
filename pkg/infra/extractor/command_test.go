package extractor_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/msgbox/pkg/domain/types"
	"github.com/m-mizutani/msgbox/pkg/infra/extractor"
)

// shellTool returns a Command that runs script with $2 bound to the output
// directory and $3 bound to the input file
func shellTool(t *testing.T, script string, opts ...extractor.Option) *extractor.Command {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}
	opts = append([]extractor.Option{extractor.WithFlags("-c", script, "tool")}, opts...)
	return extractor.New("sh", opts...)
}

func TestCommand_Args(t *testing.T) {
	cmd := extractor.New("")
	gt.Equal(t, strings.Join(cmd.Args("/in/a.msg", "/out/id"), " "),
		"-m extract_msg --use-filename --out /out/id /in/a.msg")

	custom := extractor.New("extract", extractor.WithFlags("--all"))
	gt.Equal(t, strings.Join(custom.Args("in", "out"), " "), "--all --out out in")
}

func TestCommand_Extract_Success(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sample.msg")
	outDir := filepath.Join(dir, "out")
	gt.NoError(t, os.WriteFile(input, []byte("container"), 0o600))
	gt.NoError(t, os.MkdirAll(outDir, 0o755))

	tool := shellTool(t, `mkdir -p "$2/attachments" && cp "$3" "$2/attachments/copy.bin" && echo body > "$2/message.txt"`)
	gt.NoError(t, tool.Extract(context.Background(), input, outDir))

	data, err := os.ReadFile(filepath.Join(outDir, "attachments", "copy.bin"))
	gt.NoError(t, err)
	gt.Equal(t, string(data), "container")
}

func TestCommand_Extract_Failure(t *testing.T) {
	tool := shellTool(t, `echo "not a valid msg file" >&2; exit 3`)

	err := tool.Extract(context.Background(), "in.msg", t.TempDir())
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagExtraction))
	gt.S(t, err.Error()).Contains("not a valid msg file")

	var gErr *goerr.Error
	gt.True(t, errors.As(err, &gErr))
	gt.Equal(t, gErr.Values()["exit_code"], any(3))
}

func TestCommand_Extract_Env(t *testing.T) {
	outDir := t.TempDir()
	tool := shellTool(t, `printf "%s" "$MSGBOX_TEST_VALUE" > "$2/env.txt"`, extractor.WithEnv("MSGBOX_TEST_VALUE=hello"))

	gt.NoError(t, tool.Extract(context.Background(), "in.msg", outDir))
	data, err := os.ReadFile(filepath.Join(outDir, "env.txt"))
	gt.NoError(t, err)
	gt.Equal(t, string(data), "hello")
}

func TestCommand_Extract_Timeout(t *testing.T) {
	tool := shellTool(t, `exec sleep 5`, extractor.WithTimeout(100*time.Millisecond))

	started := time.Now()
	err := tool.Extract(context.Background(), "in.msg", t.TempDir())
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagExtraction))
	gt.S(t, err.Error()).Contains("timed out")
	gt.True(t, time.Since(started) < 4*time.Second)
}

func TestCommand_Extract_MissingBinary(t *testing.T) {
	tool := extractor.New("msgbox-extractor-that-does-not-exist")

	err := tool.Extract(context.Background(), "in.msg", t.TempDir())
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagExtraction))
}
