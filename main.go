package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rusq/dlog"
	"github.com/rusq/osenv/v2"
	"github.com/rusq/tracer"
	"github.com/schollz/progressbar/v3"

	"github.com/rusq/tgcleaner/internal/config"
	"github.com/rusq/tgcleaner/internal/cutoff"
	"github.com/rusq/tgcleaner/internal/logger"
	"github.com/rusq/tgcleaner/internal/mtp"
	"github.com/rusq/tgcleaner/internal/mtp/authflow"
	"github.com/rusq/tgcleaner/internal/session"
	"github.com/rusq/tgcleaner/internal/tui"
	"github.com/rusq/tgcleaner/internal/waipu"
)

const cacheDirName = "tgcleaner"

const AppName = "Telegram Cleaner"

var (
	version   = "dev"
	builtOn   = "just now"
	gitCommit = ""
	gitRef    = ""

	versionSig = fmt.Sprintf("%s %s (built %s)", AppName, version, builtOn)
)

var _ = godotenv.Load() // load environment variables from .env, if present

type Params struct {
	CacheDirName string

	ApiID   int
	ApiHash string
	Phone   string

	Reset bool
	List  bool

	Batch     chatIDs
	Cutoff    string
	DryRun    bool
	PageSize  int
	ChunkSize int

	Config  string
	LogFile string

	Version bool
	Verbose bool
	Trace   string

	log      config.LogConfig
	cacheDir string
}

func main() {
	p, err := parseCmdLine(flag.CommandLine, os.Args[1:])
	if err != nil {
		dlog.Fatal(err)
	}
	if p.Version {
		ver(os.Stdout)
		return
	}

	dlog.SetDebug(p.Verbose)

	if err := p.initCacheDir(cacheDirName); err != nil {
		dlog.Fatalf("failed to create cache directory: %s", err)
	}

	if err := run(context.Background(), p); err != nil {
		dlog.Fatal(err)
	}
}

type chatIDs []int64

func (c *chatIDs) Set(val string) error {
	ss := strings.Split(val, ",")
	var ids = make([]int64, 0, len(ss))

	for _, sID := range ss {
		id, err := strconv.ParseInt(strings.TrimSpace(sID), 10, 64)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	*c = ids
	return nil
}

func (c *chatIDs) String() string {
	return fmt.Sprint([]int64(*c))
}

func parseCmdLine(fs *flag.FlagSet, args []string) (Params, error) {
	var p = Params{CacheDirName: cacheDirName}
	{
		fs.IntVar(&p.ApiID, "api-id", osenv.Secret("APP_ID", 0), "Telegram API ID")
		fs.StringVar(&p.ApiHash, "api-token", osenv.Secret("APP_HASH", ""), "Telegram API token")
		fs.StringVar(&p.Phone, "phone", osenv.Value("PHONE", ""), "phone `number` in international format for authentication (optional)")
		fs.BoolVar(&p.Reset, "reset", false, "reset authentication")
		fs.BoolVar(&p.List, "list", false, "list chats and their IDs")
		fs.Var(&p.Batch, "wipe", "batch mode, specify comma separated chat IDs on the command line")
		fs.StringVar(&p.Cutoff, "cutoff", osenv.Value("CUTOFF", ""), "messages `cutoff`: "+cutoff.InputHelp)
		fs.BoolVar(&p.DryRun, "dry-run", false, "only count the messages, do not delete")
		fs.IntVar(&p.PageSize, "page-size", config.DefPageSize, "search page `size` (1-100)")
		fs.IntVar(&p.ChunkSize, "chunk-size", config.DefChunkSize, "deletion chunk `size` (1-100)")

		fs.StringVar(&p.Config, "config", osenv.Value("CONFIG_FILE", ""), "YAML run `file` with chats, cutoff and log settings")
		fs.StringVar(&p.LogFile, "log", osenv.Value("LOG_FILE", ""), "log `filename`, the log is rotated")
		fs.BoolVar(&p.Version, "v", false, "print version and exit")
		fs.BoolVar(&p.Verbose, "verbose", osenv.Value("DEBUG", "") != "", "verbose output")
		fs.StringVar(&p.Trace, "trace", osenv.Value("TRACE_FILE", ""), "trace `filename`")

		if err := fs.Parse(args); err != nil {
			return p, err
		}
	}

	cfg := config.Default()
	if p.Config != "" {
		var err error
		if cfg, err = config.Load(p.Config); err != nil {
			return p, err
		}
	}
	p.merge(cfg, setFlags(fs))
	return p, nil
}

// setFlags returns the names of the flags that were set on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// merge takes the values from the run file, unless the flag was set
// explicitly.
func (p *Params) merge(cfg *config.Config, set map[string]bool) {
	if !set["wipe"] && len(cfg.Chats) > 0 {
		p.Batch = chatIDs(cfg.Chats)
	}
	if !set["cutoff"] && cfg.Cutoff != "" {
		p.Cutoff = cfg.Cutoff
	}
	if !set["dry-run"] && cfg.DryRun {
		p.DryRun = true
	}
	if !set["page-size"] {
		p.PageSize = cfg.PageSize
	}
	if !set["chunk-size"] {
		p.ChunkSize = cfg.ChunkSize
	}
	p.log = cfg.Log
	if p.LogFile != "" {
		p.log.File = p.LogFile
	}
}

func (p *Params) initCacheDir(appName string) error {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return err
	}
	cacheDir = filepath.Join(cacheDir, appName)
	if err := os.MkdirAll(cacheDir, 0700); err != nil {
		return err
	}
	p.cacheDir = cacheDir
	return nil
}

func run(ctx context.Context, p Params) error {
	if p.Trace != "" {
		tr := tracer.New(p.Trace)
		if err := tr.Start(); err != nil {
			return err
		}
		defer tr.End()
	}

	header(os.Stdout)

	lg, closer, err := logger.New(p.log, p.Verbose)
	if err != nil {
		return err
	}
	defer closer.Close()

	sessStorage := session.FileStorage{Path: filepath.Join(p.cacheDir, "session.dat")}
	apiCredsFile := filepath.Join(p.cacheDir, "telegram.dat")
	if p.Reset {
		if err := sessStorage.Reset(); err != nil {
			return err
		}
		if err := mtp.ResetCredentials(apiCredsFile); err != nil {
			return err
		}
	}
	if migrated, err := session.Migrate(ctx, sessStorage.Path); err != nil {
		lg.Printf("session migration failed: %s", err)
	} else if migrated {
		lg.Printf("session file is now encrypted")
	}

	cl, err := mtp.New(p.ApiID, p.ApiHash,
		mtp.WithAuth(authflow.NewTermAuth(p.Phone)),
		mtp.WithApiCredsFile(apiCredsFile),
		mtp.WithSessionFile(sessStorage.Path),
		mtp.WithDebug(p.Verbose),
	)
	if err != nil {
		return err
	}

	lg.Printf("Connecting to telegram . . .")
	if err := cl.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := cl.Stop(); err != nil {
			lg.Printf("stop error: %s", err)
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if p.List {
		return waipu.List(ctx, os.Stdout, cl)
	}

	var rep *waipu.Report
	if len(p.Batch) > 0 {
		policy, perr := p.policy()
		if perr != nil {
			return perr
		}
		pl, perr := pipeline(cl, p.PageSize, p.ChunkSize, p.DryRun, lg)
		if perr != nil {
			return perr
		}
		rep, err = waipu.Batch(ctx, cl, pl, policy, []int64(p.Batch))
	} else {
		done, finished := fakeProgress("Getting chats . . .", 0)
		chats, cerr := cl.GetChats(ctx)
		close(done)
		<-finished
		if cerr != nil {
			return cerr
		}
		waipu.SortByTitle(chats)
		lg.Printf("got %d chats", len(chats))

		// run UI
		tva := tui.New(tui.WithDefaults(p.Cutoff, p.DryRun))
		sel, serr := tva.Run(ctx, chats)
		if serr != nil {
			if errors.Is(serr, tui.ErrCancelled) {
				lg.Printf("nothing to do")
				return nil
			}
			return serr
		}
		pl, perr := pipeline(cl, p.PageSize, p.ChunkSize, sel.DryRun, lg)
		if perr != nil {
			return perr
		}
		rep, err = pl.Run(ctx, sel.Chats, sel.Policy)
	}
	if rep != nil {
		if serr := rep.Summary(os.Stdout); serr != nil {
			lg.Printf("summary: %s", serr)
		}
		if err == nil && rep.Failed() > 0 {
			err = fmt.Errorf("%d chat(s) failed", rep.Failed())
		}
	}
	return err
}

// policy returns the cutoff policy for the batch mode, where the cutoff is
// required.
func (p *Params) policy() (*cutoff.Policy, error) {
	if p.Cutoff == "" {
		return nil, fmt.Errorf("%w: -cutoff is required in batch mode", cutoff.ErrInvalidArgument)
	}
	policy := cutoff.New()
	if err := policy.Parse(p.Cutoff); err != nil {
		return nil, err
	}
	return policy, nil
}

func pipeline(tg waipu.Telegramer, pageSize, chunkSize int, dryRun bool, lg waipu.Logger) (*waipu.Pipeline, error) {
	pg, err := waipu.NewPaginator(tg, pageSize, waipu.WithLogger(lg))
	if err != nil {
		return nil, err
	}
	d, err := waipu.NewDeleter(tg, chunkSize, dryRun, waipu.WithLogger(lg))
	if err != nil {
		return nil, err
	}
	return waipu.NewPipeline(pg, d, waipu.WithLogger(lg)), nil
}

// fakeProgress starts a fake spinner and returns a channel that must be closed
// once the operation completes. interval is interval between iterations. If not
// set, will default to 50ms.
func fakeProgress(title string, interval time.Duration) (chan<- struct{}, <-chan struct{}) {
	if interval == 0 {
		interval = 50 * time.Millisecond
	}
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		bar := progressbar.NewOptions(
			-1,
			progressbar.OptionSetDescription(title),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionSpinnerType(9),
		)
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-done:
				bar.Finish()
				fmt.Println()
				close(finished)
				return
			case <-t.C:
				bar.Add(1)
			}
		}
	}()
	return done, finished
}

func header(w io.Writer) {
	fmt.Fprintf(w,
		"%s\n%s\n%s\n", versionSig, strings.Repeat("-", len(versionSig)),
		color.New(color.Italic).Sprint("Deletes your own messages, the others' are left alone."),
	)
	fmt.Fprintln(w)
}

func ver(w io.Writer) {
	header(w)
	if gitCommit != "" {
		fmt.Fprintf(w, "commit: %s ref: %s\n", gitCommit, gitRef)
	}
}
