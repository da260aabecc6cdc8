package fuzztests

import (
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10

// pythonSeeds cover the constructs the rules look at.
var pythonSeeds = []string{
	"",
	"\n",
	"import os",
	"import sys\nimport os\n",
	"from __future__ import annotations\nimport b\nimport a\n\nx = 1\n",
	"\"\"\"Doc.\"\"\"\nimport os\n",
	"#!/usr/bin/env python\n# -*- coding: utf-8 -*-\nimport os\n",
	"import caf\u00e9\nimport cafe\n",
	"if x == None:\n    pass\n",
	"if x != None and y == None:  \n\tpass",
	"s = \"a == None\"  # x == None\n",
	"# print(x)\n# import os\n# TODO: x = 1\n",
	"import os; import sys\n",
	"from a import (b,\n    c)\n",
	"x = 1\r\nimport os\r\n",
	"import os\r\nimport sys\r\n\r\nx = 1 \r\n",
	"import sys\r\nimport os\r\n# x = f(1)\r\nif x == None:\r\n    pass",
	"\t \nimport z\n \n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range pythonSeeds {
		f.Add([]byte(s))
	}
	paths, err := filepath.Glob(filepath.Join("testdata", "*.py"))
	if err != nil {
		return
	}
	for _, path := range paths {
		// #nosec G304 -- path comes from the package testdata directory
		src, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		f.Add(clampSeed(src))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
