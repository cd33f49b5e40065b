// Package draft holds the in-progress post: weighted status text and at most
// one attached image. The store is owned by the application and handed to the
// compose controller and the UI; setters are the only mutation path.
package draft

// WeightedStatus is the user's text plus its length weighting in parts per
// thousand of the platform limit. Permillage may exceed 1000 when the text is
// over the limit.
type WeightedStatus struct {
	Text       string
	Permillage int
}

// StatusImage is an attached image with its payload already base64 encoded.
type StatusImage struct {
	Data     string
	Name     string
	MimeType string
	Size     int64
}

// Store is the draft state holder. It is not safe for concurrent use; all
// mutations happen on the UI event loop.
type Store interface {
	WeightedStatus() *WeightedStatus
	UpdateWeightedStatus(*WeightedStatus)
	StatusImage() *StatusImage
	SetStatusImage(*StatusImage)
	OnChange(func()) (unsubscribe func())
}

type store struct {
	status    *WeightedStatus
	image     *StatusImage
	listeners map[int]func()
	nextID    int
}

// NewStore returns an empty draft store.
func NewStore() Store {
	return &store{listeners: make(map[int]func())}
}

func (s *store) WeightedStatus() *WeightedStatus {
	return cloneStatus(s.status)
}

func (s *store) UpdateWeightedStatus(status *WeightedStatus) {
	s.status = cloneStatus(status)
	s.notify()
}

func (s *store) StatusImage() *StatusImage {
	return cloneImage(s.image)
}

func (s *store) SetStatusImage(image *StatusImage) {
	s.image = cloneImage(image)
	s.notify()
}

// OnChange registers fn to run after every setter call. The returned func
// removes the listener and is safe to call more than once.
func (s *store) OnChange(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		delete(s.listeners, id)
	}
}

func (s *store) notify() {
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			fn()
		}
	}
}

func cloneStatus(status *WeightedStatus) *WeightedStatus {
	if status == nil {
		return nil
	}
	dup := *status
	return &dup
}

func cloneImage(image *StatusImage) *StatusImage {
	if image == nil {
		return nil
	}
	dup := *image
	return &dup
}
