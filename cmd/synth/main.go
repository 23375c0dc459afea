package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"tessera/internal/engine"
	"tessera/internal/metadata"
	"tessera/internal/storage"
	"tessera/internal/synth"
)

// graphDef is the JSON shape produced by the compiler front end: the
// resource nodes plus the binding declarations between them.
type graphDef struct {
	Resources []resourceDef `json:"resources"`
	Bindings  []bindingDef  `json:"bindings"`
}

type resourceDef struct {
	Kind     metadata.Kind          `json:"kind"`
	ID       metadata.Identity      `json:"id"`
	Table    *metadata.TableSpec    `json:"table,omitempty"`
	Function *metadata.FunctionSpec `json:"function,omitempty"`
}

type bindingDef struct {
	Consumer   metadata.Identity    `json:"consumer"`
	Producer   metadata.Identity    `json:"producer"`
	Operations []metadata.Operation `json:"operations"`
}

func main() {
	graphPath := flag.String("graph", "graph.json", "resource graph definition file")
	target := flag.String("target", "postgres", "synthesis target (postgres or sqlite)")
	out := flag.String("out", "", "output file (default stdout)")
	outDir := flag.String("outdir", "", "artifact directory; writes <target>.json atomically")
	flag.Parse()

	template, err := run(*graphPath, *target)
	if err != nil {
		log.Fatalf("Synthesis failed: %v", err)
	}

	data, err := json.MarshalIndent(template, "", "  ")
	if err != nil {
		log.Fatalf("Encode template: %v", err)
	}
	data = append(data, '\n')

	switch {
	case *outDir != "":
		path, err := storage.NewArtifactStore(*outDir).Save(*target, data)
		if err != nil {
			log.Fatalf("Write template: %v", err)
		}
		log.Printf("Template written to %s (%d objects)", path, len(template.Objects))
	case *out != "":
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			log.Fatalf("Write template: %v", err)
		}
		log.Printf("Template written to %s (%d objects)", *out, len(template.Objects))
	default:
		os.Stdout.Write(data)
	}
}

func run(graphPath, target string) (*engine.Template, error) {
	data, err := os.ReadFile(graphPath)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	var def graphDef
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse graph: %w", err)
	}

	session := engine.NewSession()
	for _, r := range def.Resources {
		var spec any
		switch r.Kind {
		case metadata.KindTable:
			spec = r.Table
		case metadata.KindFunction:
			spec = r.Function
		}
		if _, err := session.DefineResource(r.Kind, r.ID, spec); err != nil {
			return nil, err
		}
	}
	for _, b := range def.Bindings {
		if err := session.Bind(b.Consumer, b.Producer, b.Operations...); err != nil {
			return nil, err
		}
	}

	synthesizer, err := synthesizerFor(target)
	if err != nil {
		return nil, err
	}
	return session.Synthesize(synthesizer)
}

func synthesizerFor(target string) (engine.Synthesizer, error) {
	switch target {
	case "postgres":
		return synth.NewPostgres(), nil
	case "sqlite":
		return synth.NewSQLite(), nil
	default:
		return nil, fmt.Errorf("unknown target: %s", target)
	}
}
