package observation

type change struct {
	newValue interface{}
	oldValue interface{}
}

// recorder is a Subscriber that keeps every notification.
type recorder struct {
	changes []change
}

func (r *recorder) HandleChange(newValue, oldValue interface{}) {
	r.changes = append(r.changes, change{newValue, oldValue})
}

func (r *recorder) last() change {
	return r.changes[len(r.changes)-1]
}

// collectionRecorder is a CollectionSubscriber that keeps a copy of every
// index map it receives.
type collectionRecorder struct {
	maps []*IndexMap
}

func (r *collectionRecorder) HandleCollectionChange(_ Collection, indexMap *IndexMap) {
	r.maps = append(r.maps, indexMap.Clone())
}

// flushCounter counts its flushes and optionally re-adds itself.
type flushCounter struct {
	name    string
	flushes int
	log     *[]string
	onFlush func()
}

func (f *flushCounter) Flush() {
	f.flushes++
	if f.log != nil {
		*f.log = append(*f.log, f.name)
	}
	if f.onFlush != nil {
		f.onFlush()
	}
}

// manualScheduler records Start/Stop and lets tests drive ticks.
type manualScheduler struct {
	tick    func()
	starts  int
	stops   int
	running bool
}

func (s *manualScheduler) Start(tick func()) {
	s.tick = tick
	s.starts++
	s.running = true
}

func (s *manualScheduler) Stop() {
	s.stops++
	s.running = false
}
