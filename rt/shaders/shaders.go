package shaders

import (
	_ "embed"
)

//go:embed post.wgsl
var PostWGSL string
