package document

import (
	"fmt"
	"sort"

	"github.com/ByLCY/overset/contract"
	"github.com/ByLCY/overset/geometry"
)

const (
	// DefaultParagraphStyle 与 DefaultCharacterStyle 表示未设置样式的文本框。
	DefaultParagraphStyle = "Default Paragraph Style"
	DefaultCharacterStyle = "Default Character Style"
)

var (
	_ contract.Document  = (*Document)(nil)
	_ contract.StyleHost = (*Document)(nil)
)

// New 创建一个没有页面的空文档，当前页为 0。
func New(size geometry.Size, margins geometry.Margins, unit geometry.Unit, ts Typesetter) *Document {
	return &Document{
		Meta:       map[string]string{},
		Size:       size,
		Margins:    margins,
		Measure:    unit,
		Fonts:      map[string]FontResource{},
		ParaStyles: map[string]Style{},
		CharStyles: map[string]Style{},
		typesetter: ts,
	}
}

// SetTypesetter 替换排版后端，溢出检测与 Layout 都依赖它。
func (d *Document) SetTypesetter(ts Typesetter) { d.typesetter = ts }

func (d *Document) PageMargins() geometry.Margins { return d.Margins }

func (d *Document) PageSize() geometry.Size { return d.Size }

func (d *Document) Unit() geometry.Unit { return d.Measure }

func (d *Document) FacingPages() bool { return d.Facing }

// PageCount 返回页面数量。
func (d *Document) PageCount() int { return len(d.Pages) }

func (d *Document) CurrentPage() int { return d.current }

// SetCurrentPage 切换当前页（从 1 开始）。
func (d *Document) SetCurrentPage(page int) error {
	if page < 1 || page > len(d.Pages) {
		return fmt.Errorf("页码 %d 超出范围 1..%d：%w", page, len(d.Pages), contract.ErrInvalidPage)
	}
	d.current = page
	return nil
}

// Select 选中文本框，并把当前页切换到该文本框所在页。
func (d *Document) Select(frame string) error {
	f, err := d.frame(frame)
	if err != nil {
		return err
	}
	return d.SetCurrentPage(f.Page)
}

// MasterPageNames 返回母版名称的副本，顺序与声明顺序一致。
func (d *Document) MasterPageNames() []string {
	return append([]string(nil), d.Masters...)
}

// AddMaster 声明一个母版。
func (d *Document) AddMaster(name string) error {
	for _, m := range d.Masters {
		if m == name {
			return fmt.Errorf("母版 %q：%w", name, contract.ErrNameExists)
		}
	}
	d.Masters = append(d.Masters, name)
	return nil
}

func (d *Document) hasMaster(name string) bool {
	for _, m := range d.Masters {
		if m == name {
			return true
		}
	}
	return false
}

// NewPage 在 index 处插入页面，原有的后续页面及其文本框整体后移一页。
func (d *Document) NewPage(index int, master string) error {
	if index < 1 || index > len(d.Pages)+1 {
		return fmt.Errorf("插入页码 %d 超出范围 1..%d：%w", index, len(d.Pages)+1, contract.ErrInvalidPage)
	}
	if master != "" && !d.hasMaster(master) {
		return fmt.Errorf("母版 %q：%w", master, contract.ErrNotFound)
	}
	for _, f := range d.Frames {
		if f.Page >= index {
			f.Page++
		}
	}
	d.Pages = append(d.Pages, nil)
	copy(d.Pages[index:], d.Pages[index-1:])
	d.Pages[index-1] = &Page{Master: master}
	if d.current >= index {
		d.current++
	}
	if d.current == 0 {
		d.current = index
	}
	return nil
}

// Page 返回指定页（从 1 开始）。
func (d *Document) Page(index int) (*Page, error) {
	if index < 1 || index > len(d.Pages) {
		return nil, fmt.Errorf("页码 %d：%w", index, contract.ErrInvalidPage)
	}
	return d.Pages[index-1], nil
}

// Frame 按名称查找文本框。
func (d *Document) Frame(name string) (*Frame, bool) {
	for _, f := range d.Frames {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

func (d *Document) frame(name string) (*Frame, error) {
	if f, ok := d.Frame(name); ok {
		return f, nil
	}
	return nil, fmt.Errorf("文本框 %q：%w", name, contract.ErrNotFound)
}

// FramesOn 返回位于某页的文本框，按创建顺序排列。
func (d *Document) FramesOn(page int) []*Frame {
	var out []*Frame
	for _, f := range d.Frames {
		if f.Page == page {
			out = append(out, f)
		}
	}
	return out
}

// CreateText 在指定页创建单栏文本框。name 为空时自动命名。
func (d *Document) CreateText(page int, rect geometry.Rect, name string) (string, error) {
	if page < 1 || page > len(d.Pages) {
		return "", fmt.Errorf("在第 %d 页创建文本框：%w", page, contract.ErrInvalidPage)
	}
	if name == "" {
		name = d.autoName()
	}
	if _, exists := d.Frame(name); exists {
		return "", fmt.Errorf("文本框 %q：%w", name, contract.ErrNameExists)
	}
	if rect.Width <= 0 || rect.Height <= 0 {
		return "", fmt.Errorf("文本框 %q 尺寸无效：%gx%g", name, rect.Width, rect.Height)
	}
	d.Frames = append(d.Frames, &Frame{
		Name:    name,
		Page:    page,
		Rect:    rect,
		Columns: 1,
	})
	return name, nil
}

func (d *Document) autoName() string {
	for i := len(d.Frames) + 1; ; i++ {
		name := fmt.Sprintf("Text%d", i)
		if _, exists := d.Frame(name); !exists {
			return name
		}
	}
}

func (d *Document) Columns(frame string) (int, error) {
	f, err := d.frame(frame)
	if err != nil {
		return 0, err
	}
	return f.Columns, nil
}

func (d *Document) ColumnGap(frame string) (float64, error) {
	f, err := d.frame(frame)
	if err != nil {
		return 0, err
	}
	return f.Gap, nil
}

func (d *Document) NextFrame(frame string) (string, error) {
	f, err := d.frame(frame)
	if err != nil {
		return "", err
	}
	return f.Next, nil
}

func (d *Document) FramePage(frame string) (int, error) {
	f, err := d.frame(frame)
	if err != nil {
		return 0, err
	}
	return f.Page, nil
}

func (d *Document) SetColumns(columns int, frame string) error {
	f, err := d.frame(frame)
	if err != nil {
		return err
	}
	if columns < 1 {
		return fmt.Errorf("文本框 %q 的栏数必须大于 0，实际 %d", frame, columns)
	}
	f.Columns = columns
	return nil
}

func (d *Document) SetColumnGap(gap float64, frame string) error {
	f, err := d.frame(frame)
	if err != nil {
		return err
	}
	if gap < 0 {
		return fmt.Errorf("文本框 %q 的栏间距不能为负：%g", frame, gap)
	}
	f.Gap = gap
	return nil
}

// SizeObject 调整文本框尺寸，保持左上角位置不变。
func (d *Document) SizeObject(width, height float64, frame string) error {
	f, err := d.frame(frame)
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("文本框 %q 尺寸无效：%gx%g", frame, width, height)
	}
	f.Rect.Width = width
	f.Rect.Height = height
	return nil
}

// SetText 设置文本框内容。只有链首可以持有文本。
func (d *Document) SetText(frame, text string) error {
	f, err := d.frame(frame)
	if err != nil {
		return err
	}
	if f.Prev != "" {
		return fmt.Errorf("文本框 %q 位于 %q 之后，只能在链首设置文本：%w", frame, f.Prev, contract.ErrInvalidLink)
	}
	f.Text = text
	return nil
}

// LinkTextFrames 把 to 接到 from 之后。to 必须是没有前驱且没有文本的独立文本框。
func (d *Document) LinkTextFrames(from, to string) error {
	src, err := d.frame(from)
	if err != nil {
		return err
	}
	dst, err := d.frame(to)
	if err != nil {
		return err
	}
	switch {
	case src == dst:
		return fmt.Errorf("%q 不能链接到自身：%w", from, contract.ErrInvalidLink)
	case src.Next != "":
		return fmt.Errorf("%q 已链接到 %q：%w", from, src.Next, contract.ErrInvalidLink)
	case dst.Prev != "":
		return fmt.Errorf("%q 已有前驱 %q：%w", to, dst.Prev, contract.ErrInvalidLink)
	case dst.Text != "":
		return fmt.Errorf("%q 已有文本：%w", to, contract.ErrInvalidLink)
	}
	for _, f := range d.chainFrom(dst) {
		if f == src {
			return fmt.Errorf("链接 %q -> %q 会形成环：%w", from, to, contract.ErrInvalidLink)
		}
	}
	src.Next = dst.Name
	dst.Prev = src.Name
	return nil
}

// Chain 返回包含 frame 的整条链，从链首到链尾。
func (d *Document) Chain(frame string) ([]*Frame, error) {
	f, err := d.frame(frame)
	if err != nil {
		return nil, err
	}
	return d.chainFrom(d.head(f)), nil
}

func (d *Document) head(f *Frame) *Frame {
	seen := map[string]bool{f.Name: true}
	for f.Prev != "" {
		prev, ok := d.Frame(f.Prev)
		if !ok || seen[prev.Name] {
			break
		}
		seen[prev.Name] = true
		f = prev
	}
	return f
}

func (d *Document) chainFrom(f *Frame) []*Frame {
	out := []*Frame{f}
	seen := map[string]bool{f.Name: true}
	for f.Next != "" {
		next, ok := d.Frame(f.Next)
		if !ok || seen[next.Name] {
			break
		}
		seen[next.Name] = true
		out = append(out, next)
		f = next
	}
	return out
}

// TextOverflows 判断链首文本排满整条链后是否仍有剩余。
func (d *Document) TextOverflows(frame string) (bool, error) {
	chain, err := d.Chain(frame)
	if err != nil {
		return false, err
	}
	flow, err := d.flowChain(chain)
	if err != nil {
		return false, err
	}
	return flow.overflows(), nil
}

func (d *Document) CharacterStyles() []string { return styleNames(d.CharStyles) }

func (d *Document) ParagraphStyles() []string { return styleNames(d.ParaStyles) }

func styleNames(styles map[string]Style) []string {
	out := make([]string, 0, len(styles))
	for name := range styles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (d *Document) CharacterStyle(frame string) (string, error) {
	f, err := d.frame(frame)
	if err != nil {
		return "", err
	}
	if f.CharStyle == "" {
		return DefaultCharacterStyle, nil
	}
	return f.CharStyle, nil
}

func (d *Document) ParagraphStyle(frame string) (string, error) {
	f, err := d.frame(frame)
	if err != nil {
		return "", err
	}
	if f.ParagraphStyle == "" {
		return DefaultParagraphStyle, nil
	}
	return f.ParagraphStyle, nil
}

func (d *Document) SetCharacterStyle(style, frame string) error {
	f, err := d.frame(frame)
	if err != nil {
		return err
	}
	if style == DefaultCharacterStyle {
		f.CharStyle = ""
		return nil
	}
	if _, ok := d.CharStyles[style]; !ok {
		return fmt.Errorf("字符样式 %q：%w", style, contract.ErrNotFound)
	}
	f.CharStyle = style
	return nil
}

func (d *Document) SetParagraphStyle(style, frame string) error {
	f, err := d.frame(frame)
	if err != nil {
		return err
	}
	if style == DefaultParagraphStyle {
		f.ParagraphStyle = ""
		return nil
	}
	if _, ok := d.ParaStyles[style]; !ok {
		return fmt.Errorf("段落样式 %q：%w", style, contract.ErrNotFound)
	}
	f.ParagraphStyle = style
	return nil
}
