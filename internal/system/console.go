package system

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// EnterKiosk puts the console in graphics mode with the cursor hidden and
// returns a func that undoes both. Failures are logged, not fatal: the
// preview still runs on a console that keeps its cursor.
func EnterKiosk(l logger) (restore func()) {
	logStep(l, "KD_GRAPHICS set", "KD_GRAPHICS failed", SetGraphicsMode())
	logStep(l, "cursor hidden", "hide cursor failed", HideCursor())
	return func() {
		logStep(l, "cursor shown", "show cursor failed", ShowCursor())
		logStep(l, "KD_TEXT set", "KD_TEXT failed", RestoreTextMode())
	}
}

func logStep(l logger, ok, failed string, err error) {
	if l == nil {
		return
	}
	if err != nil {
		l.Errorf("tty", "%s: %v", failed, err)
		return
	}
	l.Infof("tty", "%s", ok)
}
