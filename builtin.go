package plume

// registerBuiltins installs the standard command set into a fresh
// interpreter's global namespace.
func registerBuiltins(i *Interp) {
	registerVarCommands(i)
	registerControlCommands(i)
	registerListCommands(i)
	registerDictCommands(i)
	registerIntroCommands(i)
}

// wrongArgs formats the canonical argument-count error.
func wrongArgs(usage string) Result {
	return Errorf("wrong # args: should be \"%s\"", usage)
}
