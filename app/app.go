package app

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/fixkme/evkit/mlog"
)

// 节点全局状态
const (
	AppStateNone = iota // 未开始或已停止
	AppStateInit
	AppStateRun
	AppStateStop
)

type Module interface {
	OnInit() error
	Run()
	Destroy()
	Name() string
}

var defaultApp = new(App)

func DefaultApp() *App { return defaultApp }

// App 中的 modules 在启动之后不能变更
type App struct {
	mods  []Module
	state int32
	sig   chan os.Signal
	wg    sync.WaitGroup
}

func (app *App) setState(s int32) { atomic.StoreInt32(&app.state, s) }
func (app *App) GetState() int32  { return atomic.LoadInt32(&app.state) }

func (app *App) start(mods ...Module) {
	// 单个app不能启动两次
	if app.GetState() != AppStateNone || len(app.mods) != 0 {
		log.Fatal("app cannot start twice")
	}
	if len(mods) == 0 {
		return
	}
	mlog.Info("app starting up")
	app.setState(AppStateInit)
	app.mods = mods
	for _, m := range app.mods {
		if err := m.OnInit(); err != nil {
			log.Fatalf("module %s init error: %v", m.Name(), err)
		}
	}
	for _, m := range app.mods {
		app.wg.Add(1)
		go func(m Module) {
			defer app.wg.Done()
			m.Run()
		}(m)
	}
	app.setState(AppStateRun)
	mlog.Info("app started")
}

func (app *App) stop() {
	if app.GetState() == AppStateStop {
		return
	}
	mlog.Info("app stop begin")
	app.setState(AppStateStop)
	// 先进后出
	for i := len(app.mods) - 1; i >= 0; i-- {
		mlog.Infof("app stop module %s", app.mods[i].Name())
		app.mods[i].Destroy()
	}
	app.wg.Wait()
	app.setState(AppStateNone)
	mlog.Info("app stopped")
}

// Run starts every module and blocks until SIGINT/SIGTERM.
func (app *App) Run(mods ...Module) {
	app.start(mods...)
	app.sig = make(chan os.Signal, 1)
	signal.Notify(app.sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-app.sig
	mlog.Infof("app got signal %v", s)
	app.stop()
}

// Stop requests a graceful stop, as if a signal arrived.
func (app *App) Stop() {
	if app.sig != nil {
		app.sig <- syscall.SIGTERM
	}
}

func Run(mods ...Module) {
	defaultApp.Run(mods...)
}
