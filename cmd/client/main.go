package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"airport-sim/internal/config"
	"airport-sim/internal/game/aircraft"
	"airport-sim/internal/game/airspace"
	"airport-sim/internal/game/astar"
	"airport-sim/internal/game/conflict"
	"airport-sim/internal/game/graph"
	"airport-sim/internal/game/shortest"
	"airport-sim/internal/game/simulation"
	"airport-sim/internal/logging"
	"airport-sim/internal/ui"
	"airport-sim/pkg/types"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
)

type Camera struct {
	X, Y                 float64
	PanStartX, PanStartY int
	Scale                float64
}

type Game struct {
	width, height int
	camera        *Camera
	sim           *simulation.Simulation
	aircraftImage *ebiten.Image

	runErr     <-chan error
	simStopped bool

	snaps              []aircraft.Snapshot
	selectedAircraftID types.AircraftID
	callsignInput      *ui.TextInput
	radioPanel         *ui.LogPanel
}

func NewGame(sim *simulation.Simulation, screenWidth, screenHeight int, runErr <-chan error) *Game {
	game := &Game{
		sim:           sim,
		camera:        &Camera{0, 0, 0, 0, 1.0},
		width:         screenWidth,
		height:        screenHeight,
		aircraftImage: newAircraftImage(),
		runErr:        runErr,
	}

	game.callsignInput = ui.NewTextInput(screenWidth-170, 10, 160, 24, game.selectByCallsign)
	game.radioPanel = ui.NewLogPanel("RADIO", screenWidth-430, screenHeight-150, 420, 140)
	return game
}

// newAircraftImage draws an arrow pointing up.
func newAircraftImage() *ebiten.Image {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	src := white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)

	var p vector.Path
	p.MoveTo(8, 0)
	p.LineTo(15, 15)
	p.LineTo(8, 11)
	p.LineTo(1, 15)
	p.Close()

	vs, is := p.AppendVerticesAndIndicesForFilling(nil, nil)
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR, vs[i].ColorG, vs[i].ColorB, vs[i].ColorA = 1, 1, 1, 1
	}
	img := ebiten.NewImage(16, 16)
	img.DrawTriangles(vs, is, src, &ebiten.DrawTrianglesOptions{AntiAlias: true})
	return img
}

func (g *Game) Update() error {
	if !g.simStopped {
		select {
		case err := <-g.runErr:
			g.simStopped = true
			if err != nil {
				return err
			}
			return ebiten.Termination
		default:
		}
	}

	g.snaps = g.sim.Snapshot()

	lines := []ui.Line{}
	for _, m := range g.sim.RadioLog() {
		lines = append(lines, ui.Line{
			Text:     fmt.Sprintf("%s %-7s %s", m.Timestamp.Format("15:04:05"), m.Callsign, m.Message),
			IsUrgent: m.IsUrgent,
		})
	}
	g.radioPanel.SetLines(lines)

	g.handleInput()
	g.callsignInput.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0, 0, 0, 255})

	g.drawAirport(screen)
	for _, s := range g.snaps {
		g.drawAircraft(screen, s)
	}

	g.drawUI(screen)
	ebitenutil.DebugPrint(screen, "FPS: "+strconv.FormatFloat(ebiten.ActualFPS(), 'f', 2, 64))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return g.width, g.height
}

func (g *Game) selectByCallsign(cs string) {
	for _, s := range g.snaps {
		if s.Callsign == cs {
			g.selectedAircraftID = s.ID
			log.Debugf("UI: selected %s", cs)
			return
		}
	}
	log.Debugf("UI: no aircraft %s", cs)
}

func (g *Game) handleInput() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()

		if g.callsignInput.IsClicked(x, y) {
			g.callsignInput.IsActive = true
			return
		}
		g.callsignInput.IsActive = false

		wx, wy := g.screenToWorld(float64(x), float64(y))
		clickedPos := types.NewVec2(wx, wy)
		g.selectedAircraftID = ""

		half := float64(g.aircraftImage.Bounds().Dx()) / 2
		for _, s := range g.snaps {
			if math.Abs(clickedPos.X-s.Position.X) <= half && math.Abs(clickedPos.Y-s.Position.Y) <= half {
				g.selectedAircraftID = s.ID
				log.Debugf("UI: selected %s", s.Callsign)
				break
			}
		}
	}

	_, wy := ebiten.Wheel()
	if wy != 0 {
		cursorX, cursorY := ebiten.CursorPosition()
		worldX, worldY := g.screenToWorld(float64(cursorX), float64(cursorY))

		scale := g.camera.Scale
		if wy > 0 {
			scale *= 1.1
		} else {
			scale /= 1.1
		}
		g.camera.Scale = math.Max(0.5, math.Min(4.0, scale))

		newWorldX, newWorldY := g.screenToWorld(float64(cursorX), float64(cursorY))
		g.camera.X -= (newWorldX - worldX)
		g.camera.Y -= (newWorldY - worldY)
	}

	// Right mouse button for pan
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		dx, dy := ebiten.CursorPosition()
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
			g.camera.PanStartX, g.camera.PanStartY = dx, dy
		} else {
			g.camera.X -= float64(dx-g.camera.PanStartX) / g.camera.Scale
			g.camera.Y -= float64(dy-g.camera.PanStartY) / g.camera.Scale
			g.camera.PanStartX, g.camera.PanStartY = dx, dy
		}
	}
}

// Helper: Convert screen coordinates to world coordinates
func (g *Game) screenToWorld(sx, sy float64) (wx, wy float64) {
	wx = sx/g.camera.Scale + g.camera.X
	wy = sy/g.camera.Scale + g.camera.Y
	return
}

// Helper: Convert world coordinates to screen coordinates
func (g *Game) worldToScreen(wx, wy float64) (sx, sy float64) {
	sx = (wx - g.camera.X) * g.camera.Scale
	sy = (wy - g.camera.Y) * g.camera.Scale
	return
}

func (g *Game) drawAircraft(screen *ebiten.Image, s aircraft.Snapshot) {
	screenX, screenY := g.worldToScreen(s.Position.X, s.Position.Y)

	// The sprite points up; headings are counterclockwise from +x.
	rotation := (90 - s.Heading) * math.Pi / 180.0

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(g.aircraftImage.Bounds().Dx()/2), -float64(g.aircraftImage.Bounds().Dy()/2))
	op.GeoM.Rotate(rotation)
	op.GeoM.Scale(g.camera.Scale, g.camera.Scale)
	op.GeoM.Translate(screenX, screenY)

	switch {
	case s.Stalled:
		op.ColorScale.Scale(1, 0.6, 0, 1)
	case s.Status >= aircraft.DEPARTED:
		op.ColorScale.Scale(0.6, 0.8, 1, 1)
	}
	if g.selectedAircraftID == s.ID {
		vector.StrokeRect(screen, float32(screenX-10*g.camera.Scale), float32(screenY-10*g.camera.Scale),
			float32(20*g.camera.Scale), float32(20*g.camera.Scale), 1, color.White, false)
	}

	screen.DrawImage(g.aircraftImage, op)

	end := conflict.Project(s.Position, s.Heading, 20)
	endScreenX, endScreenY := g.worldToScreen(end.X, end.Y)
	vector.StrokeLine(screen, float32(screenX), float32(screenY), float32(endScreenX), float32(endScreenY), 1, color.RGBA{100, 100, 255, 255}, false)

	tagText := fmt.Sprintf("%s %s\nPAX:%d\nSTS:%s", s.Callsign, s.Type, s.Passengers, s.Status)
	if s.Terminal != "" {
		tagText += "\nGATE:" + s.Terminal
	}
	ebitenutil.DebugPrintAt(screen, tagText, int(screenX)+10, int(screenY)-20)

	if s.IsConflicting {
		vector.DrawFilledCircle(screen, float32(screenX), float32(screenY), float32(10*g.camera.Scale), color.RGBA{255, 0, 0, 100}, false)
	}
}

var categoryColors = map[graph.Category]color.RGBA{
	graph.WAYPOINT:            {0, 120, 120, 255},
	graph.LANDINGPOINT_A320:   {255, 200, 0, 255},
	graph.LANDINGPOINT_A380:   {255, 140, 0, 255},
	graph.LANDINGPOINT_OTHERS: {255, 255, 0, 255},
	graph.TERMINAL:            {0, 200, 0, 255},
	graph.WAITINGPOINT:        {200, 0, 200, 255},
	graph.ENDPOINT:            {255, 255, 255, 255},
}

func (g *Game) drawAirport(screen *ebiten.Image) {
	rw := g.sim.Layout.Runway
	x0, y0 := g.worldToScreen(float64(rw.Min.X), float64(rw.Min.Y))
	runwayColor := color.RGBA{60, 60, 60, 255}
	if g.sim.Runway().IsBlocked() {
		runwayColor = color.RGBA{90, 50, 50, 255}
	}
	vector.DrawFilledRect(screen, float32(x0), float32(y0),
		float32(float64(rw.Width())*g.camera.Scale), float32(float64(rw.Height())*g.camera.Scale), runwayColor, false)

	mesh := g.sim.Mesh
	for _, n := range mesh.Nodes {
		sx, sy := g.worldToScreen(float64(n.Position.X), float64(n.Position.Y))
		for _, e := range n.Edges {
			to := mesh.Node(e.To)
			tx, ty := g.worldToScreen(float64(to.Position.X), float64(to.Position.Y))
			vector.StrokeLine(screen, float32(sx), float32(sy), float32(tx), float32(ty), float32(g.camera.Scale), color.RGBA{0, 80, 0, 255}, false)
		}
	}
	for _, n := range mesh.Nodes {
		sx, sy := g.worldToScreen(float64(n.Position.X), float64(n.Position.Y))
		vector.DrawFilledCircle(screen, float32(sx), float32(sy), float32(2*g.camera.Scale), categoryColors[n.Category], false)
	}

	for _, t := range g.sim.Terminals().Terminals() {
		sx, sy := g.worldToScreen(float64(t.Position.X), float64(t.Position.Y))
		c := color.RGBA{0, 160, 0, 255}
		if t.IsOccupied() {
			c = color.RGBA{200, 0, 0, 255}
		}
		size := 8 * g.camera.Scale
		vector.StrokeRect(screen, float32(sx-size/2), float32(sy-size/2), float32(size), float32(size), 1, c, false)
		ebitenutil.DebugPrintAt(screen, t.Name, int(sx)-6, int(sy)-int(size)-16)
	}
}

func (g *Game) drawUI(screen *ebiten.Image) {
	g.callsignInput.Draw(screen)
	g.radioPanel.Draw(screen)

	st := g.sim.Stats()
	rw := g.sim.Runway()
	holder := "free"
	if h := rw.Holder(); h != "" {
		holder = g.callsignOf(h)
	}
	status := fmt.Sprintf("LIVE:%d SPAWNED:%d DEPARTED:%d LOST:%d  RUNWAY:%s QUEUE:%d  GATES FREE:%d",
		len(g.snaps), st.Spawned, st.Departures, st.Lost, holder, rw.QueueLength(), g.sim.Terminals().Free())
	ebitenutil.DebugPrintAt(screen, status, 10, g.height-20)

	selected := "Selected: None"
	if g.selectedAircraftID != "" {
		selected = "Selected: " + g.callsignOf(g.selectedAircraftID)
	}
	ebitenutil.DebugPrintAt(screen, selected, 10, g.height-40)
}

func (g *Game) callsignOf(id types.AircraftID) string {
	for _, s := range g.snaps {
		if s.ID == id {
			return s.Callsign
		}
	}
	return string(id)
}

func newPlanner(router string, mesh *graph.NavigationMesh) (aircraft.Planner, error) {
	if router != "exact" {
		return astar.Search, nil
	}
	r, err := shortest.New(mesh)
	if err != nil {
		return nil, errors.Wrap(err, "building exact router")
	}
	return r.Search, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	closer, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()

	mesh, err := graph.LoadFile(cfg.GraphFile)
	if err != nil {
		log.Fatal(err)
	}
	planner, err := newPlanner(cfg.Router, mesh)
	if err != nil {
		log.Fatal(err)
	}

	sim, err := simulation.NewSimulation(mesh, airspace.DefaultLayout(), simulation.Options{
		MaxAircraft:       cfg.MaxAircraft,
		SpawnInterval:     cfg.SpawnInterval,
		ReapInterval:      cfg.ReapInterval,
		AdmissionInterval: cfg.AdmissionInterval,
		Timing: aircraft.Timing{
			Tick:                 cfg.Tick,
			TaxiTick:             cfg.TaxiTick,
			BoardingPerPassenger: cfg.BoardingPerPassenger,
			FinalCheck:           cfg.FinalCheck,
			Step:                 cfg.Step,
		},
		Planner: planner,
		Fleet:   cfg.Fleet,
		Seed:    cfg.Seed,
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- sim.Run(ctx) }()

	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle("Airport Simulator")
	ebiten.SetVsyncEnabled(true)

	game := NewGame(sim, cfg.WindowWidth, cfg.WindowHeight, runErr)
	err = ebiten.RunGame(game)

	cancel()
	if !game.simStopped {
		<-runErr
	}
	if err != nil {
		log.Fatal(err)
	}
}
