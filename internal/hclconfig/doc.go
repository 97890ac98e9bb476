// Package hclconfig loads project files written in HCL into the
// format-agnostic config.Project model.
//
// Expressions in a project file can read the process environment through
// the env variable:
//
//	rom    = "${env.GAME_DIR}/game.min"
//	rpl    = ["game.rpl", "text.rpl"]
//	folder = "export"
//	defines = {
//	  lang    = "en"
//	  version = 2
//	}
package hclconfig
