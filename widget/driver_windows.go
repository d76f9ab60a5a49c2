//go:build windows

package widget

import (
	"fmt"
	"log"
	"strconv"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"desktop-overlay-manager/geometry"
)

// win32Driver renders each overlay as its own layered, top-most popup
// window. Dragging rides on the native move/size loop: the window body hit
// tests as a caption, a completed drag surfaces as WM_EXITSIZEMOVE.
type win32Driver struct {
	className *uint16
	atom      win.ATOM
	overlays  map[win.HWND]*winOverlay
}

// One live driver per process; the wndProc needs a way back to its state.
var activeDriver *win32Driver

var (
	user32                      = windows.NewLazySystemDLL("user32.dll")
	procSetLayeredWindowAttribs = user32.NewProc("SetLayeredWindowAttributes")
	procSetWindowText           = user32.NewProc("SetWindowTextW")
	procFillRect                = user32.NewProc("FillRect")
	gdi32                       = windows.NewLazySystemDLL("gdi32.dll")
	procCreatePen               = gdi32.NewProc("CreatePen")
	procRectangle               = gdi32.NewProc("Rectangle")
	procEllipse                 = gdi32.NewProc("Ellipse")
	procCreateSolidBrush        = gdi32.NewProc("CreateSolidBrush")
	procSetTextColor            = gdi32.NewProc("SetTextColor")
	procSetBkColor              = gdi32.NewProc("SetBkColor")
)

const (
	lwaAlpha     = 0x2
	psSolid      = 0
	defaultAlpha = 0.3
)

func newPlatformDriver() Driver {
	d := &win32Driver{overlays: map[win.HWND]*winOverlay{}}
	name := fmt.Sprintf("OverlayWidget_%d", time.Now().UnixNano())
	d.className = syscall.StringToUTF16Ptr(name)
	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		Style:         win.CS_HREDRAW | win.CS_VREDRAW,
		LpfnWndProc:   syscall.NewCallback(overlayWndProc),
		HInstance:     win.GetModuleHandle(nil),
		HCursor:       win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_ARROW)),
		HbrBackground: 0,
		LpszClassName: d.className,
	}
	d.atom = win.RegisterClassEx(&wndClass)
	if d.atom == 0 {
		log.Printf("widget: RegisterClassEx failed, overlays will not render")
	}
	activeDriver = d
	return d
}

type overlayKind int

const (
	kindRect overlayKind = iota
	kindPoint
)

// winOverlay is the shared state behind both handle flavors.
type winOverlay struct {
	d    *win32Driver
	hwnd win.HWND
	kind overlayKind

	label     string
	style     Style
	destroyed bool

	onRectChange  func(geometry.Rect)
	onPointChange func(geometry.Point)

	// Point windows are squares centered on the marker position.
	pointRadius int
}

func (d *win32Driver) NewRect(r geometry.Rect, label string, style Style, onChange func(geometry.Rect)) (RectHandle, error) {
	o := &winOverlay{d: d, kind: kindRect, label: label, style: style, onRectChange: onChange}
	if err := d.createWindow(o, r.X, r.Y, r.Width, r.Height); err != nil {
		return nil, err
	}
	return (*winRect)(o), nil
}

func (d *win32Driver) NewPoint(p geometry.Point, label string, style Style, onChange func(geometry.Point)) (PointHandle, error) {
	o := &winOverlay{d: d, kind: kindPoint, label: label, style: style, onPointChange: onChange}
	o.pointRadius = styleInt(style, "point_radius", 8)
	side := o.pointRadius * 2
	if err := d.createWindow(o, p.X-o.pointRadius, p.Y-o.pointRadius, side, side); err != nil {
		return nil, err
	}
	return (*winPoint)(o), nil
}

func (d *win32Driver) createWindow(o *winOverlay, x, y, w, h int) error {
	if d.atom == 0 {
		return fmt.Errorf("widget: window class not registered")
	}
	hwnd := win.CreateWindowEx(
		win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW|win.WS_EX_LAYERED,
		d.className,
		syscall.StringToUTF16Ptr(o.label),
		win.WS_POPUP,
		int32(x), int32(y), int32(w), int32(h),
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		return fmt.Errorf("widget: CreateWindowEx failed")
	}
	o.hwnd = hwnd
	d.overlays[hwnd] = o

	alpha := styleFloat(o.style, "alpha", defaultAlpha)
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	procSetLayeredWindowAttribs.Call(uintptr(hwnd), 0, uintptr(byte(alpha*255)), lwaAlpha)
	return nil
}

// Dispatch drains the thread message queue without blocking. Geometry
// callbacks fire from DispatchMessage via the wndProc.
func (d *win32Driver) Dispatch() {
	var msg win.MSG
	for win.PeekMessage(&msg, 0, 0, 0, win.PM_REMOVE) {
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
}

func (d *win32Driver) Close() error {
	for hwnd := range d.overlays {
		win.DestroyWindow(hwnd)
	}
	d.overlays = map[win.HWND]*winOverlay{}
	if d.atom != 0 {
		win.UnregisterClass(d.className)
		d.atom = 0
	}
	if activeDriver == d {
		activeDriver = nil
	}
	return nil
}

// winRect adapts winOverlay to RectHandle.
type winRect winOverlay

func (h *winRect) Show()    { (*winOverlay)(h).show() }
func (h *winRect) Hide()    { (*winOverlay)(h).hide() }
func (h *winRect) Destroy() { (*winOverlay)(h).destroy() }
func (h *winRect) SetLabel(label string) {
	(*winOverlay)(h).setLabel(label)
}
func (h *winRect) SetBounds(r geometry.Rect) {
	o := (*winOverlay)(h)
	if o.destroyed {
		return
	}
	win.MoveWindow(o.hwnd, int32(r.X), int32(r.Y), int32(r.Width), int32(r.Height), true)
}

// winPoint adapts winOverlay to PointHandle.
type winPoint winOverlay

func (h *winPoint) Show()    { (*winOverlay)(h).show() }
func (h *winPoint) Hide()    { (*winOverlay)(h).hide() }
func (h *winPoint) Destroy() { (*winOverlay)(h).destroy() }
func (h *winPoint) SetLabel(label string) {
	(*winOverlay)(h).setLabel(label)
}
func (h *winPoint) SetPos(p geometry.Point) {
	o := (*winOverlay)(h)
	if o.destroyed {
		return
	}
	side := int32(o.pointRadius * 2)
	win.MoveWindow(o.hwnd, int32(p.X-o.pointRadius), int32(p.Y-o.pointRadius), side, side, true)
}

func (o *winOverlay) show() {
	if o.destroyed {
		return
	}
	win.ShowWindow(o.hwnd, win.SW_SHOWNOACTIVATE)
	win.InvalidateRect(o.hwnd, nil, false)
}

func (o *winOverlay) hide() {
	if o.destroyed {
		return
	}
	win.ShowWindow(o.hwnd, win.SW_HIDE)
}

func (o *winOverlay) destroy() {
	if o.destroyed {
		return
	}
	o.destroyed = true
	delete(o.d.overlays, o.hwnd)
	win.DestroyWindow(o.hwnd)
}

func (o *winOverlay) setLabel(label string) {
	o.label = label
	if !o.destroyed {
		procSetWindowText.Call(uintptr(o.hwnd), uintptr(unsafe.Pointer(syscall.StringToUTF16Ptr(label))))
		win.InvalidateRect(o.hwnd, nil, false)
	}
}

func (o *winOverlay) bounds() geometry.Rect {
	var rc win.RECT
	win.GetWindowRect(o.hwnd, &rc)
	return geometry.Rect{
		X:      int(rc.Left),
		Y:      int(rc.Top),
		Width:  int(rc.Right - rc.Left),
		Height: int(rc.Bottom - rc.Top),
	}
}

func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	d := activeDriver
	if d == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}
	o, ok := d.overlays[hwnd]
	if !ok {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case win.WM_NCHITTEST:
		return o.hitTest(lParam)

	case win.WM_EXITSIZEMOVE:
		// One event per completed drag or resize.
		b := o.bounds()
		if o.kind == kindRect && o.onRectChange != nil {
			o.onRectChange(b)
		}
		if o.kind == kindPoint && o.onPointChange != nil {
			o.onPointChange(geometry.Point{X: b.X + o.pointRadius, Y: b.Y + o.pointRadius})
		}
		return 0

	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		o.paint(hdc)
		win.EndPaint(hwnd, &ps)
		return 0

	case win.WM_DESTROY:
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// hitTest makes the window body behave as a caption so the native move loop
// handles dragging, and the bottom-right corner as a resize grip.
func (o *winOverlay) hitTest(lParam uintptr) uintptr {
	if !styleBool(o.style, "draggable", true) {
		return uintptr(win.HTCLIENT)
	}
	if o.kind == kindRect && styleBool(o.style, "resizable", true) {
		grip := styleInt(o.style, "resize_handle_size", 10)
		b := o.bounds()
		x := int(int16(win.LOWORD(uint32(lParam))))
		y := int(int16(win.HIWORD(uint32(lParam))))
		if x >= b.X+b.Width-grip && y >= b.Y+b.Height-grip {
			return uintptr(win.HTBOTTOMRIGHT)
		}
	}
	return uintptr(win.HTCAPTION)
}

func (o *winOverlay) paint(hdc win.HDC) {
	b := o.bounds()
	w, h := int32(b.Width), int32(b.Height)

	switch o.kind {
	case kindRect:
		bg, _, _ := procCreateSolidBrush.Call(colorref(styleString(o.style, "bg_color", "#FFFFFF")))
		rc := win.RECT{Left: 0, Top: 0, Right: w, Bottom: h}
		procFillRect.Call(uintptr(hdc), uintptr(unsafe.Pointer(&rc)), bg)
		win.DeleteObject(win.HGDIOBJ(bg))

		width := styleInt(o.style, "border_width", 2)
		pen, _, _ := procCreatePen.Call(psSolid, uintptr(width), colorref(styleString(o.style, "border_color", "#FF0000")))
		oldPen := win.SelectObject(hdc, win.HGDIOBJ(pen))
		oldBrush := win.SelectObject(hdc, win.GetStockObject(win.NULL_BRUSH))
		procRectangle.Call(uintptr(hdc), 0, 0, uintptr(w), uintptr(h))
		win.SelectObject(hdc, oldBrush)
		win.SelectObject(hdc, oldPen)
		win.DeleteObject(win.HGDIOBJ(pen))

	case kindPoint:
		brush, _, _ := procCreateSolidBrush.Call(colorref(styleString(o.style, "point_color", "#FF0000")))
		oldBrush := win.SelectObject(hdc, win.HGDIOBJ(brush))
		procEllipse.Call(uintptr(hdc), 0, 0, uintptr(w), uintptr(h))
		win.SelectObject(hdc, oldBrush)
		win.DeleteObject(win.HGDIOBJ(brush))
	}

	if o.label != "" && o.kind == kindRect {
		procSetTextColor.Call(uintptr(hdc), colorref(styleString(o.style, "label_fg", "#FFFFFF")))
		procSetBkColor.Call(uintptr(hdc), colorref(styleString(o.style, "label_bg", "#FF0000")))
		text := syscall.StringToUTF16(o.label)
		rc := win.RECT{Left: 4, Top: 2, Right: w - 4, Bottom: h - 2}
		win.DrawTextEx(hdc, &text[0], int32(len(text)-1), &rc, win.DT_LEFT|win.DT_TOP|win.DT_SINGLELINE, nil)
	}
}

// colorref converts "#RRGGBB" to the BGR COLORREF GDI expects.
func colorref(s string) uintptr {
	if len(s) == 7 && s[0] == '#' {
		if v, err := strconv.ParseUint(s[1:], 16, 32); err == nil {
			r := (v >> 16) & 0xFF
			g := (v >> 8) & 0xFF
			b := v & 0xFF
			return uintptr(b<<16 | g<<8 | r)
		}
	}
	return 0
}
