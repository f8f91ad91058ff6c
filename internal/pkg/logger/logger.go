package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger define a interface para logging estruturado.
// Handlers, serviços e repositórios dependem apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)
}

// ZeroLogger implementa Logger sobre o zerolog, com saída JSON.
type ZeroLogger struct {
	base zerolog.Logger
}

// NewLogger cria o Logger padrão da aplicação (JSON em stdout).
func NewLogger(level string) Logger {
	return New(level, "json", os.Stdout)
}

// New cria um Logger com formato e destino explícitos.
// format "console" usa o ConsoleWriter do zerolog (legível em desenvolvimento).
func New(level, format string, out io.Writer) *ZeroLogger {
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339

	base := zerolog.New(out).
		With().
		Timestamp().
		Str("service", "gopos").
		Logger().
		Level(ParseLevel(level))

	return &ZeroLogger{base: base}
}

// ParseLevel converte o nível textual; valores desconhecidos viram info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *ZeroLogger) Debug(msg string, fields map[string]interface{}) {
	l.base.Debug().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields map[string]interface{}) {
	l.base.Info().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, fields map[string]interface{}) {
	l.base.Warn().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, err error) {
	l.base.Error().Err(err).Msg(msg)
}

// Fatal registra a mensagem e encerra o processo.
func (l *ZeroLogger) Fatal(msg string, err error) {
	l.base.Fatal().Err(err).Msg(msg)
}

// NewNop retorna um Logger que descarta tudo (útil em testes).
func NewNop() Logger {
	return &ZeroLogger{base: zerolog.Nop()}
}
