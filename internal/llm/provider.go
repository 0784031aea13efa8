package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultVendor = "openai"
	DefaultModel  = "gpt-4o-mini"
)

var ErrUnknownVendor = errors.New("unknown model vendor")

// Request is one structured-output call. Schema is a JSON Schema document
// describing the expected object; providers that support structured output
// forward it, others may ignore it.
type Request struct {
	Model       string
	Prompt      string
	Temperature float64
	Schema      json.RawMessage
}

// Response carries the raw text returned by the model. Callers parse and
// validate it themselves.
type Response struct {
	Text string
}

type Provider interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// ResolveModel splits "vendor:model" into its parts. A bare vendor gets the
// vendor's default model and an empty identifier gets the baseline pair.
func ResolveModel(id string) (vendor, model string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultVendor, DefaultModel
	}
	vendor, model, found := strings.Cut(id, ":")
	vendor = strings.ToLower(strings.TrimSpace(vendor))
	model = strings.TrimSpace(model)
	if vendor == "" {
		vendor = DefaultVendor
	}
	if !found || model == "" {
		model = defaultModels[vendor]
		if model == "" {
			model = DefaultModel
		}
	}
	return vendor, model
}

var defaultModels = map[string]string{
	"openai": DefaultModel,
	"ollama": "llama3.1",
}

// Router picks a provider by vendor.
type Router struct {
	providers map[string]Provider
}

func NewRouter() *Router {
	return &Router{providers: make(map[string]Provider)}
}

func (r *Router) Register(vendor string, p Provider) {
	r.providers[strings.ToLower(vendor)] = p
}

// Generate resolves req.Model and forwards the call with the bare model name.
func (r *Router) Generate(ctx context.Context, req Request) (Response, error) {
	vendor, model := ResolveModel(req.Model)
	p, ok := r.providers[vendor]
	if !ok {
		return Response{}, fmt.Errorf("%w: %s", ErrUnknownVendor, vendor)
	}
	req.Model = model
	return p.Generate(ctx, req)
}
