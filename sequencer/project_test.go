package sequencer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSaveName(t *testing.T) {
	info, ok := parseSaveName("2024-01-15_14-30-00_verse-idea.json")
	require.True(t, ok)
	assert.Equal(t, "verse-idea", info.Name)
	assert.True(t, info.Timestamp.Equal(time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)))

	info, ok = parseSaveName("2024-01-15_14-30-00.json")
	require.True(t, ok)
	assert.Empty(t, info.Name)

	_, ok = parseSaveName("notes.txt")
	assert.False(t, ok)
	_, ok = parseSaveName("garbage.json")
	assert.False(t, ok)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "my-song-v2", sanitizeFilename("my song/v2"))
	assert.Equal(t, "what", sanitizeFilename("wh*at?"))
}

func TestProjectSaveLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	src, _ := newTestStore()
	src.SetTempo(88)
	first, err := SaveProject(src, "demo", "first")
	require.NoError(t, err)
	assert.Contains(t, first, "_first.json")

	src.SetTempo(144)
	second, err := SaveProject(src, "demo", "second")
	require.NoError(t, err)

	projects, err := ListProjects()
	require.NoError(t, err)
	assert.Equal(t, []string{"demo"}, projects)

	saves, err := ListSaves("demo")
	require.NoError(t, err)
	require.Len(t, saves, 2)
	assert.Equal(t, second, saves[0].Filename)

	dst, _ := newTestStore()
	require.NoError(t, LoadProject(dst, "demo", ""))
	assert.Equal(t, 144, dst.Settings().Tempo)

	require.NoError(t, LoadProject(dst, "demo", first))
	assert.Equal(t, 88, dst.Settings().Tempo)
}

func TestProjectRenameDelete(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s, _ := newTestStore()
	name, err := SaveProject(s, "demo", "")
	require.NoError(t, err)

	renamed, err := RenameSave("demo", name, "keeper take")
	require.NoError(t, err)
	assert.Equal(t, name[:len(saveTimeLayout)]+"_keeper-take.json", renamed)

	saves, err := ListSaves("demo")
	require.NoError(t, err)
	require.Len(t, saves, 1)
	assert.Equal(t, "keeper-take", saves[0].Name)

	require.NoError(t, DeleteSave("demo", renamed))
	saves, err = ListSaves("demo")
	require.NoError(t, err)
	assert.Empty(t, saves)

	require.NoError(t, DeleteProject("demo"))
	dir, err := ProjectDir("demo")
	require.NoError(t, err)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadProjectErrors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	s, _ := newTestStore()

	assert.Error(t, LoadProject(s, "empty", ""))

	dir, err := ProjectDir("broken")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0755))
	bad := "2024-01-15_14-30-00.json"
	require.NoError(t, os.WriteFile(filepath.Join(dir, bad), []byte(`{"tempo": 90}`), 0644))

	err = LoadProject(s, "broken", "")
	assert.ErrorIs(t, err, ErrNoPatterns)
	assert.Equal(t, DefaultTempo, s.Settings().Tempo)
}
