package core

// Document is the whole persisted application state. It has no schema
// version: new fields must be optional so older documents keep decoding.
type Document struct {
	ActiveItems         []Item           `json:"activeItems"`
	DeleteBox           []RetiredItem    `json:"deleteBox"`
	Deliveries          []DeliveryRecord `json:"deliveries"`
	LastDeliveredItemID string           `json:"lastDeliveredItemId,omitempty"`
	LastDeliveryID      string           `json:"lastDeliveryId,omitempty"`
}

// NewDocument returns an empty document with non-nil collections.
func NewDocument() Document {
	return Document{
		ActiveItems: []Item{},
		DeleteBox:   []RetiredItem{},
		Deliveries:  []DeliveryRecord{},
	}
}

// Clone returns a deep copy. Nil collections come back empty.
func (d Document) Clone() Document {
	out := NewDocument()
	out.LastDeliveredItemID = d.LastDeliveredItemID
	out.LastDeliveryID = d.LastDeliveryID
	for _, it := range d.ActiveItems {
		out.ActiveItems = append(out.ActiveItems, it.Clone())
	}
	for _, r := range d.DeleteBox {
		out.DeleteBox = append(out.DeleteBox, r.Clone())
	}
	for _, rec := range d.Deliveries {
		out.Deliveries = append(out.Deliveries, rec.Clone())
	}
	return out
}

// ActiveIndex returns the position of the active item with id, or -1.
func (d Document) ActiveIndex(id string) int {
	for i := range d.ActiveItems {
		if d.ActiveItems[i].ID == id {
			return i
		}
	}
	return -1
}

// RetiredIndex returns the position of the retired item with id, or -1.
func (d Document) RetiredIndex(id string) int {
	for i := range d.DeleteBox {
		if d.DeleteBox[i].ID == id {
			return i
		}
	}
	return -1
}

// DeliveryIndex returns the position of the delivery record with id, or -1.
func (d Document) DeliveryIndex(id string) int {
	for i := range d.Deliveries {
		if d.Deliveries[i].ID == id {
			return i
		}
	}
	return -1
}

// FindActive returns the active item with id.
func (d Document) FindActive(id string) (Item, bool) {
	if i := d.ActiveIndex(id); i >= 0 {
		return d.ActiveItems[i], true
	}
	return Item{}, false
}

// FindDelivery returns the delivery record with id.
func (d Document) FindDelivery(id string) (DeliveryRecord, bool) {
	if i := d.DeliveryIndex(id); i >= 0 {
		return d.Deliveries[i], true
	}
	return DeliveryRecord{}, false
}
