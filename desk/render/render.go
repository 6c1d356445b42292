// Package render draws the six primary screens and the secondary status
// layout into RGB565 frames. The scheduler only sees the Renderer
// boundary: frame plus hit regions in, pixels out, no shared state.
package render

import (
	"fmt"
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freesans"
	"tinygo.org/x/tinyfont/proggy"

	"anddesk/desk/model"
	"anddesk/desk/nav"
	"anddesk/hal"
)

// Dark theme, neon accents.
var (
	colorBG      = color.RGBA{R: 8, G: 9, B: 12, A: 0xff}
	colorSurface = color.RGBA{R: 14, G: 16, B: 22, A: 0xff}
	colorLine    = color.RGBA{R: 26, G: 30, B: 40, A: 0xff}
	colorCyan    = color.RGBA{R: 0, G: 210, B: 240, A: 0xff}
	colorGreen   = color.RGBA{R: 0, G: 210, B: 120, A: 0xff}
	colorYellow  = color.RGBA{R: 240, G: 190, B: 0, A: 0xff}
	colorOrange  = color.RGBA{R: 255, G: 130, B: 40, A: 0xff}
	colorBlue    = color.RGBA{R: 70, G: 140, B: 255, A: 0xff}
	colorMagenta = color.RGBA{R: 220, G: 60, B: 200, A: 0xff}
	colorWhite   = color.RGBA{R: 210, G: 215, B: 225, A: 0xff}
	colorMuted   = color.RGBA{R: 85, G: 95, B: 115, A: 0xff}
)

var (
	fontSmall = &proggy.TinySZ8pt7b
	fontBold  = &freesans.Bold9pt7b
	fontTimer = &freesans.Bold24pt7b
)

// Primary panel chrome.
const (
	barH = 24 // top bar
	botH = 18 // bottom hint strip
)

// UI is the built-in renderer. It allocates one frame per panel and
// reuses them; the driver copies pixels out during the blit, so reuse
// across ticks is safe.
type UI struct {
	primary   *hal.Frame
	secondary *hal.Frame
}

// New returns a renderer.
func New() *UI { return &UI{} }

// Primary draws the active screen at w×h and returns the frame together
// with the tappable regions of what was drawn.
func (u *UI) Primary(screen nav.Screen, snap model.Snapshot, w, h int) (*hal.Frame, []nav.Region, error) {
	if u.primary == nil || u.primary.W != w || u.primary.H != h {
		u.primary = hal.NewFrame(w, h)
	}
	f := u.primary
	f.ClearRGB(colorBG.R, colorBG.G, colorBG.B)
	d := newFBDisplay(f)

	var regions []nav.Region
	switch screen {
	case nav.Dashboard:
		regions = u.dashboard(d, snap)
	case nav.Apps:
		regions = u.apps(d)
	case nav.Brief:
		regions = u.brief(d, snap)
	case nav.Emails:
		regions = u.emails(d, snap)
	case nav.SysCare:
		regions = u.syscare(d, snap)
	case nav.Focus:
		regions = u.focus(d, snap)
	default:
		return nil, nil, fmt.Errorf("render: unknown screen %d", screen)
	}
	return f, regions, nil
}

// Secondary draws the fixed status layout at w×h.
func (u *UI) Secondary(snap model.Snapshot, w, h int) (*hal.Frame, error) {
	if u.secondary == nil || u.secondary.W != w || u.secondary.H != h {
		u.secondary = hal.NewFrame(w, h)
	}
	f := u.secondary
	f.ClearRGB(colorBG.R, colorBG.G, colorBG.B)
	u.status(newFBDisplay(f), snap)
	return f, nil
}

func (d *fbDisplay) text(f tinyfont.Fonter, x, y int, s string, c color.RGBA) {
	tinyfont.WriteLine(d, f, int16(x), int16(y), s, c)
}

func (d *fbDisplay) textCentered(f tinyfont.Fonter, y int, s string, c color.RGBA) {
	_, outbox := tinyfont.LineWidth(f, s)
	x := (d.fb.W - int(outbox)) / 2
	d.text(f, x, y, s, c)
}

func (d *fbDisplay) topBar(title, right string, accent color.RGBA) {
	d.FillRectangle(0, 0, int16(d.fb.W), barH, colorSurface)
	d.text(fontBold, 10, 17, title, accent)
	if right != "" {
		_, outbox := tinyfont.LineWidth(fontBold, right)
		d.text(fontBold, d.fb.W-int(outbox)-10, 17, right, colorWhite)
	}
	d.hline(0, d.fb.W, barH, colorLine)
}

func (d *fbDisplay) bottomHint(s string) {
	y := d.fb.H - botH
	d.hline(0, d.fb.W, y, colorLine)
	d.text(fontSmall, 10, y+12, s, colorMuted)
}

func (d *fbDisplay) statusDot(x, y int, online bool) {
	c := colorGreen
	if !online {
		c = colorMuted
	}
	d.dot(x, y, 2, c)
}

// dashboard: clock and user on the left of the divider, disk usage pie
// block below them, activity rows on the right. The pie block is the
// tap target that opens the apps grid.
func (u *UI) dashboard(d *fbDisplay, snap model.Snapshot) []nav.Region {
	d.topBar(snap.Username, snap.TimeStr, colorCyan)

	colW := 110
	d.text(fontBold, 14, barH+28, snap.TimeStr, colorWhite)
	d.text(fontSmall, 14, barH+44, snap.DateStr, colorMuted)
	d.vline(colW, barH+8, d.fb.H-botH-8, colorLine)

	// Disk block, drawn as stacked usage bars inside the tap target.
	d.FillRectangle(14, 82, 82, 80, colorSurface)
	d.text(fontSmall, 20, 96, "disk", colorMuted)
	used, total := snap.Deck.DiskUsed, snap.Deck.DiskTotal
	if total <= 0 {
		total = 1
	}
	d.FillRectangle(20, 104, 70, 8, colorLine)
	d.FillRectangle(20, 104, int16(70*used/total), 8, colorGreen)
	d.text(fontSmall, 20, 128, fmt.Sprintf("%d/%dG", used, total), colorWhite)
	d.text(fontSmall, 20, 150, "tap for apps", colorMuted)

	fx := colW + 14
	rowH := (d.fb.H - barH - botH) / 4
	for i := 0; i < 4 && i < len(snap.Activities); i++ {
		a := snap.Activities[i]
		ry := barH + i*rowH
		d.text(fontSmall, fx, ry+14, a.Title, colorWhite)
		d.text(fontSmall, fx, ry+28, a.Subtitle, colorMuted)
		d.text(fontSmall, d.fb.W-44, ry+14, a.Time, colorMuted)
		d.statusDot(d.fb.W-10, ry+12, a.Online)
	}

	d.bottomHint("and-desk")
	return []nav.Region{
		{X0: 14, Y0: 82, X1: 96, Y1: 162, Op: nav.OpNavigate, Target: nav.Apps},
	}
}

type appTile struct {
	label  string
	target nav.Screen
	color  color.RGBA
}

var appsTiles = [4]appTile{
	{"summarize mails", nav.Emails, colorOrange},
	{"focus mode", nav.Focus, colorBlue},
	{"brief my day", nav.Brief, colorCyan},
	{"system care", nav.SysCare, colorGreen},
}

// apps: 2×2 tile grid plus the back affordance.
func (u *UI) apps(d *fbDisplay) []nav.Region {
	d.topBar("apps", "", colorCyan)

	const pad = 6
	tileW := (d.fb.W - pad*3) / 2
	tileH := (d.fb.H - barH - botH - pad*3) / 2

	regions := make([]nav.Region, 0, len(appsTiles)+1)
	for i, tile := range appsTiles {
		col, row := i%2, i/2
		tx := pad + col*(tileW+pad)
		ty := barH + pad + row*(tileH+pad)

		d.FillRectangle(int16(tx), int16(ty), int16(tileW), int16(tileH), colorSurface)
		d.textCentered(fontSmall, ty+tileH/2, tile.label, tile.color)
		d.FillRectangle(int16(tx+20), int16(ty+tileH-5), int16(tileW-40), 2, tile.color)

		regions = append(regions, nav.Region{
			X0: tx, Y0: ty, X1: tx + tileW, Y1: ty + tileH,
			Op: nav.OpNavigate, Target: tile.target,
		})
	}

	d.bottomHint("tap bottom-left to go back")
	regions = append(regions, backRegion(d.fb.H))
	return regions
}

func (u *UI) brief(d *fbDisplay, snap model.Snapshot) []nav.Region {
	d.topBar("brief", snap.TimeStr, colorCyan)

	w := snap.Weather
	d.text(fontBold, 14, barH+24, w.Icon+" "+w.Temp, colorWhite)
	d.text(fontSmall, 14, barH+40, w.Desc, colorMuted)
	d.hline(10, d.fb.W-10, barH+50, colorLine)

	y := barH + 66
	for i, ev := range snap.Events {
		if i >= 5 {
			break
		}
		d.text(fontSmall, 16, y, ev.Time, colorMuted)
		d.text(fontSmall, 62, y, ev.Title, colorWhite)
		y += 16
	}
	for i, r := range snap.Reminders {
		if i >= 3 || y > d.fb.H-botH-10 {
			break
		}
		d.text(fontSmall, 16, y, "· "+r, colorYellow)
		y += 14
	}

	d.bottomHint("tap bottom-left to go back")
	return []nav.Region{backRegion(d.fb.H)}
}

func (u *UI) emails(d *fbDisplay, snap model.Snapshot) []nav.Region {
	d.topBar("mails", fmt.Sprintf("%d unread", snap.Unread), colorOrange)

	d.text(fontSmall, 14, barH+16, snap.EmailSummary, colorWhite)
	d.hline(10, d.fb.W-10, barH+26, colorLine)

	y := barH + 42
	for i, m := range snap.Emails {
		if i >= 6 || y > d.fb.H-botH-10 {
			break
		}
		d.text(fontSmall, 16, y, m.From, colorCyan)
		d.text(fontSmall, d.fb.W-56, y, m.Time, colorMuted)
		d.text(fontSmall, 16, y+12, m.Subject, colorWhite)
		y += 30
	}

	d.bottomHint("tap bottom-left to go back")
	return []nav.Region{backRegion(d.fb.H)}
}

// syscare: deck and server gauges plus the temp-file cleaner. The whole
// content area is the clean tap target until the clean has fired.
func (u *UI) syscare(d *fbDisplay, snap model.Snapshot) []nav.Region {
	d.topBar("system care", snap.TimeStr, colorGreen)

	half := d.fb.W / 2
	d.vline(half, barH+8, d.fb.H-botH-40, colorLine)

	drawHost := func(x int, name string, s model.HostStats, online bool) {
		d.text(fontBold, x, barH+20, name, colorCyan)
		d.statusDot(x+half-16, barH+14, online)
		d.text(fontSmall, x, barH+40, fmt.Sprintf("cpu %d%%", s.CPU), colorWhite)
		d.text(fontSmall, x, barH+56, fmt.Sprintf("ram %d%%", s.RAM), colorWhite)
		d.text(fontSmall, x, barH+72, fmt.Sprintf("disk %d/%dG", s.DiskUsed, s.DiskTotal), colorGreen)
	}
	drawHost(8, "DECK", snap.Deck, snap.DeckOnline)
	drawHost(half+8, "SERVER", snap.Server, snap.ServerOnline)

	ty := d.fb.H - botH - 34
	d.hline(10, d.fb.W-10, ty-8, colorLine)
	if snap.CleanDone {
		d.text(fontSmall, 14, ty+8, "temp files cleaned", colorGreen)
	} else {
		label := fmt.Sprintf("%d temp files, %d MB - tap to clean",
			snap.TempInfo.Count, snap.TempInfo.SizeMB)
		d.text(fontSmall, 14, ty+8, label, colorYellow)
	}

	d.bottomHint("tap bottom-left to go back")
	regions := []nav.Region{backRegion(d.fb.H)}
	if !snap.CleanDone {
		regions = append(regions, nav.Region{
			X0: 0, Y0: barH, X1: d.fb.W, Y1: d.fb.H - botH, Op: nav.OpCleanTemp,
		})
	}
	return regions
}

func (u *UI) focus(d *fbDisplay, snap model.Snapshot) []nav.Region {
	d.topBar("focus", snap.TimeStr, colorMagenta)

	fs := snap.Focus
	remaining := fs.SessionMins - fs.ElapsedMins
	if remaining < 0 {
		remaining = 0
	}
	d.textCentered(fontTimer, barH+60, fmt.Sprintf("%02d:00", remaining), colorWhite)

	total := fs.SessionMins
	if total <= 0 {
		total = 1
	}
	d.FillRectangle(30, barH+80, int16(d.fb.W-60), 5, colorLine)
	d.FillRectangle(30, barH+80, int16((d.fb.W-60)*fs.ElapsedMins/total), 5, colorMagenta)

	status := "idle"
	c := colorMuted
	if fs.Active {
		status = "active"
		c = colorGreen
		d.text(fontSmall, 30, barH+130, "windows closed, notifications off", colorMuted)
	}
	d.statusDot(30, barH+108, fs.Active)
	d.text(fontSmall, 42, barH+112, status, c)
	if fs.Message != "" {
		d.text(fontSmall, 30, barH+148, fs.Message, colorYellow)
	}

	d.bottomHint("back ends the session")
	return []nav.Region{backRegion(d.fb.H)}
}

// status: the secondary panel. Deck and server columns on the top
// two-thirds, weather strip below. Nothing here is tappable.
func (u *UI) status(d *fbDisplay, snap model.Snapshot) {
	half := d.fb.W / 2
	topH := d.fb.H * 2 / 3

	d.vline(half, 0, topH, colorLine)
	d.hline(0, d.fb.W, topH, colorLine)

	col := func(x int, name string, s model.HostStats, online bool) {
		d.text(fontSmall, x+4, 10, name, colorCyan)
		d.statusDot(x+half-8, 7, online)
		d.hline(x+2, x+half-2, 15, colorLine)
		d.text(fontSmall, x+4, 30, fmt.Sprintf("cpu %d%%", s.CPU), colorWhite)
		d.text(fontSmall, x+4, 46, fmt.Sprintf("ram %d%%", s.RAM), colorWhite)
		d.text(fontSmall, x+4, 62, fmt.Sprintf("%d/%dG", s.DiskUsed, s.DiskTotal), colorGreen)
	}
	col(0, "DECK", snap.Deck, snap.DeckOnline)
	col(half, "SERVER", snap.Server, snap.ServerOnline)

	wy := topH + 4
	d.text(fontSmall, 4, wy+10, "weather", colorMuted)
	d.hline(2, d.fb.W-2, wy+14, colorLine)
	d.text(fontBold, 5, wy+32, snap.Weather.Temp, colorWhite)
	d.text(fontSmall, 60, wy+32, snap.Weather.Desc, colorMuted)
}

// backRegion is the shared back affordance over the bottom-left of the
// hint strip.
func backRegion(h int) nav.Region {
	return nav.Region{X0: 0, Y0: h - botH, X1: 100, Y1: h, Op: nav.OpBack}
}
