package cmd

import "github.com/subframe7536/yaak/pkg"

var (
	ErrWriteConfig = pkg.MakeErrorf("write configuration file")
	ErrFileExists  = pkg.MakeErrorf("file exists (use --force to overwrite)")
	ErrNoFiles     = pkg.MakeErrorf("no input files matched")
	ErrKeyStore    = pkg.MakeErrorf("unknown key store")
	ErrRender      = pkg.MakeErrorf("render failed")
)
