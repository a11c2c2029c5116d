package magetasks

// RunAll builds rbuild and then runs its test suite.
func RunAll() error {
	PrintH1Header("rbuild")
	if err := BuildAll(); err != nil {
		return err
	}
	return TestAll()
}
