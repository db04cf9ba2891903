package serverapp

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rs/cors"

	"github.com/y-maeda1116/FlowPrint/internal/clock"
	"github.com/y-maeda1116/FlowPrint/internal/codec"
	"github.com/y-maeda1116/FlowPrint/internal/config"
	"github.com/y-maeda1116/FlowPrint/internal/httpmw"
	"github.com/y-maeda1116/FlowPrint/internal/model"
	"github.com/y-maeda1116/FlowPrint/internal/persist"
	"github.com/y-maeda1116/FlowPrint/internal/receipt"
	"github.com/y-maeda1116/FlowPrint/internal/stats"
	"github.com/y-maeda1116/FlowPrint/internal/task"
	"github.com/y-maeda1116/FlowPrint/internal/template"
	staticfiles "github.com/y-maeda1116/FlowPrint/static"
)

type Options struct {
	Config *config.Config
	Logger *log.Logger
	Clock  clock.Clock
	// Sink overrides the printer sink (tests use this).
	Sink receipt.Sink
}

// NewHandler wires the whole app: store seeded from the persisted blob,
// template catalog, autosave subscriber, printer, handlers, middleware.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	cfg := opts.Config
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	logger := opts.Logger

	store := task.NewStore(task.Options{
		Clock:        opts.Clock,
		DeletePolicy: task.DeletePolicy(cfg.Tasks.DeletePolicy),
		MaxColumns:   cfg.Columns.Max,
	})

	blob, err := persist.NewStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	templateRepo, err := template.NewFileRepo(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	if b, found, err := blob.Load(); err != nil {
		return nil, err
	} else if found {
		res, ok := codec.Import(b)
		if !ok {
			logger.Printf("persisted state at %s is malformed; starting empty", blob.Path())
		} else {
			if res.VersionMismatch {
				logger.Printf("persisted state has schema version %d (current %d)", res.Version, codec.SchemaVersion)
			}
			store.Replace(res.Tasks, res.RootTaskIDs)
			// templates.json wins; the blob only seeds an empty catalog
			if m, err := templateRepo.Map(); err == nil && len(m) == 0 && len(res.Templates) > 0 {
				if err := templateRepo.ReplaceAll(res.Templates); err != nil {
					logger.Printf("seed template catalog: %v", err)
				}
			}
		}
	}
	store.SetActiveColumns([]model.TaskID{})

	saver := persist.NewAutosaver(blob, logger)
	saver.Start()
	store.Subscribe(func() {
		tasks, roots := store.Snapshot()
		templates, err := templateRepo.Map()
		if err != nil {
			logger.Printf("snapshot templates: %v", err)
		}
		b, err := codec.Marshal(codec.Export(tasks, roots, templates))
		if err != nil {
			logger.Printf("marshal state: %v", err)
			return
		}
		saver.Queue(b)
	})

	sink := opts.Sink
	if sink == nil {
		if cfg.Printer.DevicePath != "" {
			sink = receipt.DeviceSink{Path: cfg.Printer.DevicePath}
		} else {
			sink = receipt.NewFileSink(filepath.Join(cfg.DataDir, "receipts.spool"))
		}
	}
	printer := receipt.NewPrinter(sink)

	engine := template.NewEngine(store, templateRepo, opts.Clock)
	taskHandler := task.NewHandler(store)
	templateHandler := template.NewHandler(templateRepo, engine)
	codecHandler := codec.NewHandler(store, templateRepo, opts.Clock, logger)
	statsHandler := stats.NewHandler(stats.NewAggregator(store, opts.Clock))
	receiptHandler := receipt.NewHandler(store, printer, receipt.Layout{
		Width: cfg.Printer.Width,
		Title: cfg.Printer.Title,
	}, opts.Clock)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":      true,
			"service": "flowprint",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/api/tasks", taskHandler.TasksRoot)
	mux.HandleFunc("/api/tasks/", taskHandler.TasksSub)
	mux.HandleFunc("/api/columns", taskHandler.ColumnsRoot)
	mux.HandleFunc("/api/templates", templateHandler.Root)
	mux.HandleFunc("/api/templates/", templateHandler.Sub)
	mux.HandleFunc("/api/export", codecHandler.Export)
	mux.HandleFunc("/api/import", codecHandler.Import)
	mux.HandleFunc("/api/stats", statsHandler.Stats)
	mux.HandleFunc("/api/print", receiptHandler.Print)

	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticfiles.EmbeddedFS()))))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.ServeFileFS(w, r, staticfiles.EmbeddedFS(), "index.html")
	})

	handler := httpmw.Chain(mux,
		httpmw.WithRequestID,
		httpmw.WithRecover(logger),
		httpmw.WithAccessLog(logger),
	)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
	})
	return c.Handler(handler), nil
}
