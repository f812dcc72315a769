package gemini

import "go.opentelemetry.io/otel"

const scopeName = "github.com/hammamikhairi/celestialwok/internal/gemini"

var tracer = otel.Tracer(scopeName)
