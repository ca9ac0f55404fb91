package sequencer

// Sample describes one entry of the drum sample library
type Sample struct {
	ID       string
	Label    string
	Category Category
	URL      string
}

func sample(file, label string, cat Category) Sample {
	return Sample{ID: file, Label: label, Category: cat, URL: "/samples/" + file}
}

// Samples is the sample library grouped by category
var Samples = map[Category][]Sample{
	CategoryKick: {
		sample("distkit-kick.wav", "DistKit", CategoryKick),
		sample("sdbkit-kick.wav", "SDBKit", CategoryKick),
		sample("sdbkit-sub-a.wav", "SDBKit Sub", CategoryKick),
		sample("synthkit-kick.wav", "SynthKit", CategoryKick),
		sample("x0xproc1-kick.wav", "X0x1", CategoryKick),
		sample("x0xproc2-kick.wav", "X0x2", CategoryKick),
	},
	CategorySnare: {
		sample("distkit-snare.wav", "DistKit", CategorySnare),
		sample("sdbkit-snare.wav", "SDBKit", CategorySnare),
		sample("synthkit-snare.wav", "SynthKit", CategorySnare),
		sample("x0xproc1-snare.wav", "X0x1", CategorySnare),
		sample("x0xproc2-snare.wav", "X0x2", CategorySnare),
	},
	CategoryHihat: {
		sample("distkit-hatclsd.wav", "DistKit Clsd", CategoryHihat),
		sample("distkit-hatopen.wav", "DistKit Open", CategoryHihat),
		sample("sdbkit-hatclsd.wav", "SDBKit Clsd", CategoryHihat),
		sample("sdbkit-hatopen.wav", "SDBKit Open", CategoryHihat),
		sample("synthkit-hatclsd.wav", "SynthKit Clsd", CategoryHihat),
		sample("synthkit-hatopen.wav", "SynthKit Open", CategoryHihat),
		sample("x0xproc1-hatclsd.wav", "X0x1 Clsd", CategoryHihat),
		sample("x0xproc1-hatopen.wav", "X0x1 Open", CategoryHihat),
		sample("x0xproc2-hatclsd.wav", "X0x2 Clsd", CategoryHihat),
		sample("x0xproc2-hatopen.wav", "X0x2 Open", CategoryHihat),
	},
	CategoryPerc: {
		sample("distkit-claves.wav", "DistKit Claves", CategoryPerc),
		sample("distkit-cowbell.wav", "DistKit Cowbell", CategoryPerc),
		sample("distkit-zap.wav", "DistKit Zap", CategoryPerc),
		sample("sdbkit-fmperc.wav", "SDBKit FM", CategoryPerc),
		sample("synthkit-8bit.wav", "SynthKit 8-Bit", CategoryPerc),
		sample("x0xproc1-rimshot.wav", "X0x1 Rim", CategoryPerc),
		sample("x0xproc2-claves.wav", "X0x2 Claves", CategoryPerc),
		sample("x0xproc2-cowbell.wav", "X0x2 Cowbell", CategoryPerc),
		sample("x0xproc2-maracas.wav", "X0x2 Maracas", CategoryPerc),
		sample("x0xproc2-rimshot.wav", "X0x2 Rim", CategoryPerc),
	},
	CategoryClap: {
		sample("distkit-clap.wav", "DistKit", CategoryClap),
		sample("sdbkit-clap.wav", "SDBKit", CategoryClap),
		sample("synthkit-clap.wav", "SynthKit", CategoryClap),
		sample("x0xproc1-clap.wav", "X0x1", CategoryClap),
		sample("x0xproc2-clap.wav", "X0x2", CategoryClap),
	},
	CategoryCymbal: {
		sample("distkit-crash.wav", "DistKit Crash", CategoryCymbal),
		sample("distkit-ride.wav", "DistKit Ride", CategoryCymbal),
		sample("synthkit-crash.wav", "SynthKit Crash", CategoryCymbal),
		sample("synthkit-ride.wav", "SynthKit Ride", CategoryCymbal),
		sample("x0xproc1-crash.wav", "X0x1 Crash", CategoryCymbal),
		sample("x0xproc1-ride.wav", "X0x1 Ride", CategoryCymbal),
		sample("x0xproc2-cymbal.wav", "X0x2 Cymbal", CategoryCymbal),
	},
	CategoryTom: {
		sample("distkit-hitom.wav", "DistKit High", CategoryTom),
		sample("distkit-midtom.wav", "DistKit Mid", CategoryTom),
		sample("distkit-lotom.wav", "DistKit Low", CategoryTom),
		sample("sdbkit-hitom.wav", "SDBKit High", CategoryTom),
		sample("sdbkit-midtom.wav", "SDBKit Mid", CategoryTom),
		sample("sdbkit-lotom.wav", "SDBKit Low", CategoryTom),
		sample("synthkit-hitom.wav", "SynthKit High", CategoryTom),
		sample("synthkit-midtom.wav", "SynthKit Mid", CategoryTom),
		sample("synthkit-lotom.wav", "SynthKit Low", CategoryTom),
		sample("x0xproc1-hitom.wav", "X0x1 High", CategoryTom),
		sample("x0xproc1-midtom.wav", "X0x1 Mid", CategoryTom),
		sample("x0xproc1-lotom.wav", "X0x1 Low", CategoryTom),
		sample("x0xproc2-hitom.wav", "X0x2 High", CategoryTom),
		sample("x0xproc2-midtom.wav", "X0x2 Mid", CategoryTom),
		sample("x0xproc2-lotom.wav", "X0x2 Low", CategoryTom),
	},
}

// RandomSample picks a sample of the given category, falling back to perc
func RandomSample(rng RandomSource, cat Category) Sample {
	list, ok := Samples[cat]
	if !ok || len(list) == 0 {
		list = Samples[CategoryPerc]
	}
	idx := int(rng.Float64() * float64(len(list)))
	if idx >= len(list) {
		idx = len(list) - 1
	}
	return list[idx]
}

// ValidCategory reports whether cat is a known category
func ValidCategory(cat Category) bool {
	_, ok := Samples[cat]
	return ok
}
