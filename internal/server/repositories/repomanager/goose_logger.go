package repomanager

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/smartq/internal/logging"
)

// gooseLogger sends goose output through logging.Logger.
type gooseLogger struct {
	log logging.Logger
}

// osExit is a test seam for Fatalf.
var osExit = os.Exit

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Info(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
	osExit(1)
}
