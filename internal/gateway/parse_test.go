package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"misetui/internal/model"
)

func TestParseTools(t *testing.T) {
	data := []byte(`{
		"python": [{"version": "3.12.1", "requested_version": "3.12", "installed": true, "active": false,
		            "source": {"type": "mise.toml", "path": "/home/u/app/.mise.toml"}}],
		"node": [
			{"version": "18.0.0", "installed": true, "active": true, "source": "/home/u/.config/mise/config.toml"},
			{"version": "20.0.0", "installed": true, "active": false}
		]
	}`)

	tools, err := ParseTools(data)
	require.NoError(t, err)
	require.Len(t, tools, 3)

	assert.Equal(t, "node", tools[0].Name)
	assert.Equal(t, "18.0.0", tools[0].Version)
	assert.True(t, tools[0].Active)
	assert.Equal(t, "/home/u/.config/mise/config.toml", tools[0].Source)
	assert.Equal(t, "20.0.0", tools[1].Version)
	assert.Equal(t, "python", tools[2].Name)
	assert.Equal(t, "3.12", tools[2].RequestedVersion)
	assert.Equal(t, "/home/u/app/.mise.toml", tools[2].Source)
}

func TestParseToolsMalformed(t *testing.T) {
	_, err := ParseTools([]byte(`[`))
	assert.Error(t, err)
}

func TestParseOutdated(t *testing.T) {
	data := []byte(`{"node": {"requested": "20", "current": "20.1.0", "latest": "20.11.0", "source": {"path": "/p/.mise.toml"}}}`)
	out, err := ParseOutdated(data)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, model.OutdatedTool{Name: "node", Requested: "20", Current: "20.1.0", Latest: "20.11.0", Source: "/p/.mise.toml"}, out[0])
}

func TestParseEnvSorted(t *testing.T) {
	data := []byte(`{"PATH": {"value": "/bin", "source": "mise.toml"}, "GOROOT": {"value": "/go", "tool": "go"}}`)
	vars, err := ParseEnv(data)
	require.NoError(t, err)
	require.Len(t, vars, 2)
	assert.Equal(t, "GOROOT", vars[0].Name)
	assert.Equal(t, "go", vars[0].Tool)
	assert.Equal(t, "PATH", vars[1].Name)
	assert.Equal(t, "mise.toml", vars[1].Source)
}

func TestParseSettingsFlattens(t *testing.T) {
	data := []byte(`{"experimental": true, "jobs": 8, "status": {"missing_tools": "if_other_versions_installed"}, "disable_tools": [], "env_file": null}`)
	settings, err := ParseSettings(data)
	require.NoError(t, err)

	byKey := map[string]model.Setting{}
	for _, s := range settings {
		byKey[s.Key] = s
	}
	assert.Equal(t, "true", byKey["experimental"].Value)
	assert.Equal(t, "bool", byKey["experimental"].ValueType)
	assert.Equal(t, "8", byKey["jobs"].Value)
	assert.Equal(t, "number", byKey["jobs"].ValueType)
	assert.Equal(t, "if_other_versions_installed", byKey["status.missing_tools"].Value)
	assert.Equal(t, "[]", byKey["disable_tools"].Value)
	assert.Equal(t, "array", byKey["disable_tools"].ValueType)
	assert.Equal(t, "null", byKey["env_file"].ValueType)

	for i := 1; i < len(settings); i++ {
		assert.Less(t, settings[i-1].Key, settings[i].Key)
	}
}

func TestParseTasks(t *testing.T) {
	data := []byte(`[{"name": "build", "description": "Build it", "source": "/p/.mise.toml", "aliases": ["b"]}]`)
	tasks, err := ParseTasks(data)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, []string{"b"}, tasks[0].Aliases)
	assert.Equal(t, "/p/.mise.toml", tasks[0].Source)
}

func TestParseVersionsNewestFirstWithLimit(t *testing.T) {
	data := []byte("18.0.0\n18.1.0\n\n20.0.0\n22.0.0\n")
	assert.Equal(t, []string{"22.0.0", "20.0.0"}, ParseVersions(data, 2))
	assert.Equal(t, []string{"22.0.0", "20.0.0", "18.1.0", "18.0.0"}, ParseVersions(data, 0))
	assert.Empty(t, ParseVersions(nil, 10))
}

func TestParsePrune(t *testing.T) {
	data := []byte("node@18.0.0\n  python 3.11.0 \nmise pruned ruby@3.2.0\nweird\n\n")
	assert.Equal(t, []model.PruneCandidate{
		{Tool: "node", Version: "18.0.0"},
		{Tool: "python", Version: "3.11.0"},
		{Tool: "ruby", Version: "3.2.0"},
		{Tool: "weird"},
	}, ParsePrune(data))
}

func TestParseDoctor(t *testing.T) {
	assert.Equal(t, []string{"version: 2025.1.0", "", "ok"}, ParseDoctor([]byte("version: 2025.1.0\n\nok\n")))
	assert.Nil(t, ParseDoctor(nil))
}

func TestPrettyJSON(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", PrettyJSON([]byte(`{"a":1}`)))
	assert.Equal(t, "not json", PrettyJSON([]byte("not json")))
}
