package importsort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivasurya/pathfinder-pytype/internal/pyparser"
	"github.com/shivasurya/pathfinder-pytype/internal/pytoken"
)

var py312 = pytoken.PyVersion{Major: 3, Minor: 12}

func TestSortGroupsStdlibThirdPartyAndLocal(t *testing.T) {
	src := "import mypkg.util\n" +
		"import os\n" +
		"from . import sibling\n" +
		"import requests\n" +
		"import sys\n" +
		"\n" +
		"x = 1\n"
	file, errs := pyparser.Parse("mod.py", src, py312)
	require.Empty(t, errs)

	rewritten, changed := Sort(src, file)
	require.True(t, changed)

	assert.Equal(t, "import os\n"+
		"import sys\n"+
		"\n"+
		"import requests\n"+
		"\n"+
		"from . import sibling\n"+
		"import mypkg.util\n"+
		"\n"+
		"x = 1\n", rewritten)
}

func TestSortIsStableWhenAlreadySorted(t *testing.T) {
	src := "import os\n" +
		"import sys\n" +
		"\n" +
		"x = 1\n"
	file, errs := pyparser.Parse("mod.py", src, py312)
	require.Empty(t, errs)

	_, changed := Sort(src, file)
	assert.False(t, changed)
}

func TestSortSkipsSingleImport(t *testing.T) {
	src := "import os\n\nx = 1\n"
	file, errs := pyparser.Parse("mod.py", src, py312)
	require.Empty(t, errs)

	rewritten, changed := Sort(src, file)
	assert.False(t, changed)
	assert.Equal(t, src, rewritten)
}

func TestClassifyFutureImportSortsFirst(t *testing.T) {
	src := "import os\n" +
		"from __future__ import annotations\n" +
		"\n" +
		"x = 1\n"
	file, errs := pyparser.Parse("mod.py", src, py312)
	require.Empty(t, errs)

	rewritten, changed := Sort(src, file)
	require.True(t, changed)
	assert.Equal(t, "from __future__ import annotations\n"+
		"\n"+
		"import os\n"+
		"\n"+
		"x = 1\n", rewritten)
}
