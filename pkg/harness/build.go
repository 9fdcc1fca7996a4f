package harness

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/harnessviz/pkg/colors"
	"github.com/matzehuels/harnessviz/pkg/document"
	"github.com/matzehuels/harnessviz/pkg/errors"
	"github.com/matzehuels/harnessviz/pkg/units"
)

// autoPrefix starts the names of instances created by "Template." refs.
const autoPrefix = "__"

// New builds the entity model of doc.
//
// Every declared connector and cable becomes an entity unless it is only
// ever referenced as a template ("Template.Name" or "Template."). Template
// instances follow in order of first reference. All row refs are checked
// here, so a dangling reference fails with SCHEMA_ERROR before any row is
// resolved.
func New(doc *document.Document, opts Options) (*Harness, error) {
	opts.setDefaults()
	h := &Harness{
		Name:     doc.Name,
		Metadata: doc.Metadata,
		Options:  opts,
		entities: make(map[string]Entity),
	}

	defs, err := collectDefinitions(doc)
	if err != nil {
		return nil, err
	}

	inst := newInstancer(defs, opts.TemplateSeparator)
	rows := make([]Row, len(doc.Connections))
	for i, r := range doc.Connections {
		row := make(Row, len(r))
		for j, e := range r {
			if len(e.Components) > 0 {
				ids := make([]string, len(e.Components))
				for k, ref := range e.Components {
					id, err := inst.resolve(ref)
					if err != nil {
						return nil, errors.WithEntity(err, ref)
					}
					ids[k] = id
				}
				row[j] = RowEntry{Designators: e.Designators, Components: ids}
				continue
			}
			id, err := inst.resolve(e.Ref)
			if err != nil {
				return nil, errors.WithEntity(err, e.Ref)
			}
			row[j] = RowEntry{Ref: id, Designators: e.Designators}
		}
		rows[i] = row
	}
	h.Rows = rows

	for _, name := range defs.order {
		if inst.templateOnly(name) {
			continue
		}
		if err := h.add(name, defs, name); err != nil {
			return nil, err
		}
	}
	for _, in := range inst.instances {
		if err := h.add(in.id, defs, in.template); err != nil {
			return nil, err
		}
	}

	for i, it := range doc.AdditionalItems {
		item, err := buildItem(it)
		if err != nil {
			return nil, errors.WithEntity(err, fmt.Sprintf("additional_bom_items[%d]", i))
		}
		h.Items = append(h.Items, item)
	}
	return h, nil
}

func (h *Harness) add(id string, defs definitions, template string) error {
	if c, ok := defs.connectors[template]; ok {
		conn, err := buildConnector(id, c)
		if err != nil {
			return errors.WithEntity(err, id)
		}
		h.Connectors = append(h.Connectors, conn)
		h.entities[id] = conn
		return nil
	}
	cable, err := buildCable(id, defs.cables[template], h.Options)
	if err != nil {
		return errors.WithEntity(err, id)
	}
	h.Cables = append(h.Cables, cable)
	h.entities[id] = cable
	return nil
}

type definitions struct {
	connectors map[string]document.Connector
	cables     map[string]document.Cable
	order      []string
}

func (d definitions) has(name string) bool {
	_, c := d.connectors[name]
	_, w := d.cables[name]
	return c || w
}

func collectDefinitions(doc *document.Document) (definitions, error) {
	defs := definitions{
		connectors: make(map[string]document.Connector, len(doc.Connectors)),
		cables:     make(map[string]document.Cable, len(doc.Cables)),
	}
	for _, c := range doc.Connectors {
		if defs.has(c.ID) {
			return defs, errors.Schema(c.ID, "declared more than once")
		}
		defs.connectors[c.ID] = c
		defs.order = append(defs.order, c.ID)
	}
	for _, c := range doc.Cables {
		if defs.has(c.ID) {
			return defs, errors.Schema(c.ID, "declared more than once")
		}
		defs.cables[c.ID] = c
		defs.order = append(defs.order, c.ID)
	}
	return defs, nil
}

type instance struct {
	id       string
	template string
}

// instancer maps row refs to entity IDs, creating template instances.
type instancer struct {
	defs      definitions
	sep       string
	instances []instance
	byID      map[string]string // instance ID -> template
	auto      map[string]int
	plain     map[string]bool // definitions referenced by their own name
}

func newInstancer(defs definitions, sep string) *instancer {
	return &instancer{
		defs:  defs,
		sep:   sep,
		byID:  make(map[string]string),
		auto:  make(map[string]int),
		plain: make(map[string]bool),
	}
}

func (in *instancer) resolve(ref string) (string, error) {
	if !strings.Contains(ref, in.sep) {
		if in.defs.has(ref) {
			in.plain[ref] = true
			return ref, nil
		}
		if _, ok := in.byID[ref]; ok {
			return ref, nil
		}
		return "", errors.Schema(ref, "unknown connector or cable")
	}

	template, id, _ := strings.Cut(ref, in.sep)
	if strings.Contains(id, in.sep) {
		return "", errors.Schema(ref, "more than one template separator %q", in.sep)
	}
	if !in.defs.has(template) {
		return "", errors.Schema(ref, "unknown template %q", template)
	}
	if id == "" {
		in.auto[template]++
		id = autoPrefix + template + "_" + strconv.Itoa(in.auto[template])
	}
	if err := errors.ValidateIdentifier(id); err != nil {
		return "", err
	}
	if prev, ok := in.byID[id]; ok {
		if prev != template {
			return "", errors.Schema(ref, "%s redefined from template %s to %s", id, prev, template)
		}
		return id, nil
	}
	if in.defs.has(id) {
		return "", errors.Schema(ref, "instance name %s collides with a declared component", id)
	}
	in.byID[id] = template
	in.instances = append(in.instances, instance{id: id, template: template})
	return id, nil
}

// templateOnly reports whether a definition is referenced only as a template.
func (in *instancer) templateOnly(name string) bool {
	if in.plain[name] {
		return false
	}
	for _, i := range in.instances {
		if i.template == name {
			return true
		}
	}
	return false
}

func buildConnector(id string, d document.Connector) (*Connector, error) {
	c := &Connector{
		ID:               id,
		Type:             d.Type,
		Subtype:          d.Subtype,
		HideDisconnected: d.HideDisconnectedPins,
		Parts:            parts(d.Manufacturer, d.MPN, d.PN, d.Notes),
		byID:             make(map[string]int),
		byLabel:          make(map[string]int),
	}

	count := d.PinCount
	for _, n := range []int{len(d.Pins), len(d.PinLabels), len(d.PinColors)} {
		if n == 0 {
			continue
		}
		if count == 0 {
			count = n
		}
		if n != count {
			return nil, errors.Schema("", "pincount %d does not match %d pins, labels or colors", count, n)
		}
	}
	if count <= 0 {
		return nil, errors.Schema("", "connector has no pins (set pincount, pins or pinlabels)")
	}

	c.Pins = make([]Pin, count)
	for i := range c.Pins {
		p := Pin{Index: i + 1, ID: strconv.Itoa(i + 1)}
		if len(d.Pins) > 0 {
			p.ID = string(d.Pins[i])
		}
		if len(d.PinLabels) > 0 {
			p.Label = string(d.PinLabels[i])
		}
		if len(d.PinColors) > 0 && d.PinColors[i] != "" {
			mc, err := colors.Resolve(string(d.PinColors[i]))
			if err != nil {
				return nil, err
			}
			p.Color = mc
		}
		if p.ID == "" {
			return nil, errors.Schema("", "pin %d has an empty ID", i+1)
		}
		if err := errors.ValidateDesignator("", p.ID); err != nil {
			return nil, err
		}
		if p.Label != "" {
			if err := errors.ValidateDesignator("", p.Label); err != nil {
				return nil, err
			}
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, errors.Schema("", "duplicate pin ID %q", p.ID)
		}
		c.byID[p.ID] = i
		if p.Label != "" {
			if _, dup := c.byLabel[p.Label]; dup {
				return nil, errors.Schema("", "duplicate pin label %q", p.Label)
			}
			c.byLabel[p.Label] = i
		}
		c.Pins[i] = p
	}
	// IDs and labels share one designator namespace.
	for i, p := range c.Pins {
		if j, ok := c.byID[p.Label]; ok && p.Label != "" && j != i {
			return nil, errors.Schema("", "pin label %q is the ID of pin %d", p.Label, j+1)
		}
	}
	return c, nil
}

func buildCable(id string, d document.Cable, opts Options) (*Cable, error) {
	c := &Cable{
		ID:        id,
		Type:      d.Type,
		Category:  d.Category,
		ShowEquiv: opts.ShowEquiv,
		Parts:     parts(d.Manufacturer, d.MPN, d.PN, d.Notes),
		byLabel:   make(map[string]int),
	}
	if d.ShowEquiv != nil {
		c.ShowEquiv = *d.ShowEquiv
	}
	if c.Category != "" && c.Category != Bundle {
		return nil, errors.Schema("", "unknown cable category %q", c.Category)
	}

	cols, err := wireColors(d)
	if err != nil {
		return nil, err
	}
	count := d.WireCount
	if count == 0 {
		count = len(cols)
	}
	if count <= 0 {
		return nil, errors.Schema("", "cable has no wires (set wirecount or colors)")
	}
	if d.ColorCode != "" {
		if cols, err = colors.Expand(d.ColorCode, count); err != nil {
			return nil, err
		}
		c.ColorCode = strings.ToUpper(strings.TrimSpace(d.ColorCode))
	} else if len(cols) > 0 && len(cols) != count {
		return nil, errors.ColorCode("%d colors given for %d wires", len(cols), count)
	}
	if len(d.WireLabels) > count {
		return nil, errors.Schema("", "%d wire labels given for %d wires", len(d.WireLabels), count)
	}

	c.Wires = make([]Wire, count)
	for i := range c.Wires {
		w := Wire{Index: i + 1, ID: strconv.Itoa(i + 1)}
		if len(cols) > 0 {
			w.Color = cols[i]
		}
		if i < len(d.WireLabels) && d.WireLabels[i] != "" {
			w.Label = string(d.WireLabels[i])
			if err := errors.ValidateDesignator("", w.Label); err != nil {
				return nil, err
			}
			if _, dup := c.byLabel[w.Label]; dup {
				return nil, errors.Schema("", "duplicate wire label %q", w.Label)
			}
			if w.Label == ShieldDesignator {
				return nil, errors.Schema("", "wire label %q is reserved for the shield", w.Label)
			}
			if n, err := strconv.Atoi(w.Label); err == nil && n >= 1 && n <= count && n != i+1 {
				return nil, errors.Schema("", "wire label %q is the index of wire %d", w.Label, n)
			}
			c.byLabel[w.Label] = i
		}
		c.Wires[i] = w
	}

	if d.Shield.Present {
		s := &Wire{ID: ShieldDesignator, Label: "Shield", Shield: true}
		if d.Shield.Color != "" {
			if s.Color, err = colors.Resolve(d.Shield.Color); err != nil {
				return nil, err
			}
		}
		c.Shield = s
	}

	if d.Gauge != "" {
		if c.Gauge, err = parseGauge(string(d.Gauge), d.GaugeUnit); err != nil {
			return nil, err
		}
		c.GaugeLabel = c.Gauge.String()
		if c.ShowEquiv {
			c.GaugeLabel = opts.Gauges.Equivalent(c.Gauge)
		}
	}
	if d.Length != "" {
		if c.Length, err = parseLength(string(d.Length), d.LengthUnit, opts.LengthUnit); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func wireColors(d document.Cable) ([]colors.Multicolor, error) {
	if len(d.Colors) > 0 && d.ColorCode != "" {
		return nil, errors.Schema("", "colors and color_code are mutually exclusive")
	}
	out := make([]colors.Multicolor, len(d.Colors))
	for i, t := range d.Colors {
		mc, err := colors.Resolve(string(t))
		if err != nil {
			return nil, err
		}
		out[i] = mc
	}
	return out, nil
}

func parseGauge(s, unit string) (units.Quantity, error) {
	if unit == "" {
		unit = string(units.MM2)
	}
	q, err := units.ParseQuantity(s, unit)
	if err != nil {
		return units.Quantity{}, err
	}
	if q.Unit.Dimension() != units.DimensionGauge {
		return units.Quantity{}, errors.Unit("gauge %q is not a cross-section or AWG value", s)
	}
	return units.Normalize(q.Value, string(q.Unit))
}

func parseLength(s, unit string, target units.Unit) (units.Quantity, error) {
	if unit == "" {
		unit = string(target)
	}
	q, err := units.ParseQuantity(s, unit)
	if err != nil {
		return units.Quantity{}, err
	}
	if q.Unit.Dimension() != units.DimensionLength {
		return units.Quantity{}, errors.Unit("length %q is not a length", s)
	}
	m, err := units.Normalize(q.Value, string(q.Unit))
	if err != nil {
		return units.Quantity{}, err
	}
	return units.ConvertLength(m, target)
}

func buildItem(it document.Item) (Item, error) {
	item := Item{
		Description: it.Description,
		Qty:         1,
		Unit:        it.Unit,
		Designators: it.Designators,
		Parts:       parts(it.Manufacturer, it.MPN, it.PN, ""),
	}
	if it.Description == "" {
		return Item{}, errors.Schema("", "description is required")
	}
	if it.Qty != "" {
		q, err := strconv.ParseFloat(string(it.Qty), 64)
		if err != nil || q <= 0 {
			return Item{}, errors.Schema("", "invalid qty %q", it.Qty)
		}
		item.Qty = q
	}
	return item, nil
}

func parts(manufacturer, mpn, pn, notes document.Text) Parts {
	return Parts{
		Manufacturer: string(manufacturer),
		MPN:          string(mpn),
		PN:           string(pn),
		Notes:        string(notes),
	}
}
