package docs

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/etnz/realreturn/config"
)

// commands are the rra subcommands the documentation may use.
var commands = []string{"analyze", "cache", "topic", "help", "commands", "flags"}

func TestTopics(t *testing.T) {
	file, err := os.Open("readme.md")
	require.NoError(t, err)
	defer file.Close()

	var listed []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	require.NoError(t, scanner.Err())

	all, err := All()
	require.NoError(t, err)
	assert.ElementsMatch(t, all, listed, "readme.md must list every topic")

	for _, topic := range listed {
		_, err := Topic(topic)
		assert.NoError(t, err, topic)
	}
}

func TestTopics_Content(t *testing.T) {
	index, err := Topics()
	require.NoError(t, err)
	assert.Contains(t, index, "* returns:")

	both, err := Topics("cache", "config")
	require.NoError(t, err)
	assert.Contains(t, both, "# Cache")
	assert.Contains(t, both, "# Configuration")

	every, err := Topics("*")
	require.NoError(t, err)
	assert.Contains(t, every, "# Returns")
	assert.Contains(t, every, "# Sources")
	assert.NotContains(t, every, "rra topic <name>")

	_, err = Topics("returns", "nope")
	assert.ErrorContains(t, err, `topic "nope" not found`)
}

func TestYamlBlocks(t *testing.T) {
	t.Setenv("FRED_API_KEY", "")
	t.Setenv("REALRETURN_CACHE_DIR", "")
	t.Setenv("REALRETURN_LOG_LEVEL", "")

	blocks := fencedBlocks(t, "yaml")
	require.NotEmpty(t, blocks)
	for _, b := range blocks {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(b.Content), 0o644))

		cfg, err := config.Load(path)
		require.NoError(t, err, "%s:%d", b.File, b.Line)
		assert.NoError(t, cfg.Validate(), "%s:%d", b.File, b.Line)
	}
}

func TestBashBlocks(t *testing.T) {
	blocks := fencedBlocks(t, "bash")
	require.NotEmpty(t, blocks)
	for _, b := range blocks {
		for _, line := range strings.Split(strings.TrimSpace(b.Content), "\n") {
			fields := strings.Fields(line)
			i := slices.Index(fields, "rra")
			if !assert.GreaterOrEqual(t, i, 0, "%s:%d: %q does not run rra", b.File, b.Line, line) {
				continue
			}
			assert.True(t, slices.ContainsFunc(fields[i+1:], func(f string) bool {
				return slices.Contains(commands, f)
			}), "%s:%d: %q uses an unknown command", b.File, b.Line, line)
		}
	}
}

// block is a fenced code block of a markdown topic.
type block struct {
	Lang    string
	Content string
	File    string
	Line    int
}

// fencedBlocks parses every topic and returns its fenced code blocks of the given language.
func fencedBlocks(t *testing.T, lang string) []block {
	t.Helper()
	files, err := filepath.Glob("*.md")
	require.NoError(t, err)

	var blocks []block
	for _, file := range files {
		content, err := os.ReadFile(file)
		require.NoError(t, err)

		root := goldmark.DefaultParser().Parse(text.NewReader(content))
		err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			fcb, ok := n.(*ast.FencedCodeBlock)
			if !entering || !ok || fcb.Info == nil {
				return ast.WalkContinue, nil
			}
			if string(fcb.Language(content)) != lang {
				return ast.WalkContinue, nil
			}
			var b strings.Builder
			for i := 0; i < fcb.Lines().Len(); i++ {
				line := fcb.Lines().At(i)
				b.Write(line.Value(content))
			}
			blocks = append(blocks, block{
				Lang:    lang,
				Content: b.String(),
				File:    file,
				Line:    bytes.Count(content[:fcb.Info.Segment.Start], []byte("\n")) + 1,
			})
			return ast.WalkContinue, nil
		})
		require.NoError(t, err)
	}
	return blocks
}
