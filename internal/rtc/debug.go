package rtc

import (
	pionlog "github.com/pion/logging"
	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"
)

// settingEngine routes pion's internal logs into log, at debug level when requested.
func settingEngine(debug bool, log *zap.Logger) webrtc.SettingEngine {
	factory := pionlog.NewDefaultLoggerFactory()
	factory.Writer = zap.NewStdLog(log.Named("pion")).Writer()
	factory.DefaultLogLevel = pionlog.LogLevelWarn
	if debug {
		factory.DefaultLogLevel = pionlog.LogLevelDebug
	}

	s := webrtc.SettingEngine{}
	s.LoggerFactory = factory
	return s
}
