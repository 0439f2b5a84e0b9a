// Command mathrender renders LaTeX math expressions to image files.
//
//	mathrender [flags] expression...
//
// With no expression arguments the source is read from stdin. Every
// expression is written to its own file; finished renders are kept in a
// SQLite cache so repeated runs skip the web engine.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cryguy/mathrender"
	"github.com/cryguy/mathrender/internal/iterm2"
	"github.com/cryguy/mathrender/internal/rendercache"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
)

// tracer traces with key 'mathrender.cli'.
func tracer() tracing.Trace {
	return tracing.Select("mathrender.cli")
}

type options struct {
	format   string
	out      string
	density  float64
	workers  int
	timeout  time.Duration
	cacheDir string
	maxAge   time.Duration
	preview  bool
	debug    bool
	flip     bool
	minify   bool
	style    mathrender.Style
}

func main() {
	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":              "go",
		"trace.mathrender":             "Error",
		"trace.mathrender.cli":         "Info",
		"trace.mathrender.debugimage":  "Info",
		"trace.mathrender.markup":      "Error",
		"trace.mathrender.pipeline":    "Error",
		"trace.mathrender.rendercache": "Error",
		"trace.mathrender.texlayout":   "Error",
		"trace.mathrender.uiloop":      "Error",
		"trace.mathrender.webapi":      "Error",
		"trace.mathrender.webview":     "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	var opts options
	opts.style = mathrender.DefaultStyle()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	flag.StringVar(&opts.format, "format", "png", "Output format [png|jpeg|raw]")
	flag.StringVar(&opts.out, "o", "", "Output file, or directory when rendering several expressions")
	flag.Float64Var(&opts.density, "density", 2, "Device pixels per CSS pixel")
	flag.IntVar(&opts.workers, "workers", 2, "Number of renderers")
	flag.DurationVar(&opts.timeout, "timeout", mathrender.DefaultTimeout, "Time limit per expression")
	flag.StringVar(&opts.cacheDir, "cache", defaultCacheDir(), "Render cache directory, empty to disable")
	flag.DurationVar(&opts.maxAge, "cache-max-age", 30*24*time.Hour, "Drop cached renders older than this, 0 keeps all")
	flag.BoolVar(&opts.preview, "preview", false, "Show the images inline in iTerm2")
	flag.BoolVar(&opts.debug, "debug", false, "Also save a JPEG of every render under "+mathrender.DebugDir)
	flag.BoolVar(&opts.flip, "flip", false, "Write raw pixel rows bottom-up")
	flag.BoolVar(&opts.minify, "minify", false, "Minify page scripts")
	flag.StringVar(&opts.style.FontSize, "font-size", opts.style.FontSize, "CSS font size of the math")
	flag.StringVar(&opts.style.TextColor, "color", opts.style.TextColor, "CSS text colour")
	flag.StringVar(&opts.style.BackgroundColor, "bg", opts.style.BackgroundColor, "CSS background colour")
	flag.StringVar(&opts.style.Padding, "padding", opts.style.Padding, "CSS padding around the math")
	flag.StringVar(&opts.style.FontFamily, "font", opts.style.FontFamily, "CSS font family")
	flag.StringVar(&opts.style.CustomMathStyle, "math-style", "", "Extra CSS declarations for the math element")
	flag.Parse()
	setTraceLevel(*tlevel)

	sources, err := readSources(flag.Args(), os.Stdin)
	if err != nil {
		tracer().Errorf("%v", err)
		os.Exit(2)
	}
	if err := run(sources, opts); err != nil {
		tracer().Errorf("%v", err)
		os.Exit(3)
	}
}

func setTraceLevel(s string) {
	switch strings.ToLower(s) {
	case "debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
		tracing.Select("mathrender.pipeline").SetTraceLevel(tracing.LevelDebug)
	case "error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().SetTraceLevel(tracing.LevelInfo)
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return dir + string(os.PathSeparator) + "mathrender"
}

// readSources returns the normalized expressions to render: the arguments,
// or the whole of stdin as one expression.
func readSources(args []string, stdin io.Reader) ([]string, error) {
	if len(args) == 0 {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		args = []string{string(b)}
	}
	var sources []string
	for _, a := range args {
		if s := mathrender.NormalizeSource(a); s != "" {
			sources = append(sources, s)
		}
	}
	if len(sources) == 0 {
		return nil, errors.New("nothing to render")
	}
	return sources, nil
}

func run(sources []string, opts options) error {
	enc, err := encoderFor(opts.format, opts.flip)
	if err != nil {
		return err
	}
	cache := openCache(opts.cacheDir, opts.maxAge)
	if cache != nil {
		defer cache.Close()
	}
	cfg := mathrender.DefaultEngineConfig()
	cfg.MinifyScripts = opts.minify
	pool, err := mathrender.NewPool(min(opts.workers, len(sources)), cfg, opts.density,
		mathrender.WithStyle(opts.style), mathrender.WithTimeout(opts.timeout))
	if err != nil {
		return err
	}
	defer pool.Close()
	tracer().Debugf("rendering %d expressions with %s", len(sources), mathrender.Backend())

	var wg sync.WaitGroup
	errs := make([]error, len(sources))
	var outMu sync.Mutex
	for i, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := render(pool, cache, src, opts)
			if err != nil {
				errs[i] = fmt.Errorf("rendering %q: %w", src, err)
				return
			}
			path := outputPath(opts.out, i, len(sources), enc.ext)
			if opts.debug {
				if _, err := mathrender.SaveDebugImage(img, fmt.Sprintf("formula-%d", i+1)); err != nil {
					tracer().Errorf("debug image: %v", err)
				}
			}
			if opts.preview && iterm2.IsCompatible(os.Stdout) {
				outMu.Lock()
				if err := iterm2.Image(os.Stdout, img.RGBA(), iterm2.Options{Name: src}); err != nil {
					tracer().Errorf("preview: %v", err)
				}
				outMu.Unlock()
			}
			if err := writeFile(path, img, enc); err != nil {
				errs[i] = err
				return
			}
			tracer().Infof("%s: %dx%d -> %s", src, img.Width(), img.Height(), path)
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// render returns the image for src, from the cache when possible.
func render(pool *mathrender.Pool, cache *rendercache.Cache, src string, opts options) (*mathrender.RenderedImage, error) {
	key := rendercache.Key{Latex: src, Style: opts.style, Density: opts.density}
	if cache != nil {
		e, ok, err := cache.Get(key)
		if err != nil {
			tracer().Errorf("render cache: %v", err)
		} else if ok {
			tracer().Debugf("%s: cached %dx%d", src, e.Width, e.Height)
			return fromEntry(e), nil
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout+time.Second)
	defer cancel()
	img, err := pool.RenderLatex(ctx, src, opts.style)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		e, err := toEntry(img)
		if err == nil {
			err = cache.Put(key, e)
		}
		if err != nil {
			tracer().Errorf("render cache: %v", err)
		}
	}
	return img, nil
}
