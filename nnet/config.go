package nnet

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// Training and evaluation configuration settings
type Config struct {
	DataDir     string
	OutDir      string
	Backbone    string
	Model       string
	Eta         float64
	Lambda      float64
	TrainBatch  int
	TestBatch   int
	MaxEpoch    int
	MaxSamples  int
	LogEvery    int
	StopAfter   int
	MinLoss     float64
	RandSeed    int64
	DebugLevel  int
	ImageScale  int
	CropSize    int
	Distort     bool
	Normalise   bool
	TenCrop     bool
	FineTuneAll bool
	TopBottomK  int
	RankClasses int
	TailStart   float64
	TailSteps   int
	WebAddr     string
	WebUser     string
	WebPass     string
}

// DefaultConfig returns the baseline settings for VOC fine-tuning.
func DefaultConfig() Config {
	return Config{
		DataDir:     "data",
		OutDir:      "out",
		WebAddr:     ":8080",
		Eta:         0.001,
		TrainBatch:  32,
		TestBatch:   64,
		MaxEpoch:    20,
		LogEvery:    1,
		StopAfter:   3,
		ImageScale:  280,
		CropSize:    224,
		Distort:     true,
		Normalise:   true,
		TopBottomK:  5,
		RankClasses: 4,
		TailStart:   0.5,
		TailSteps:   20,
		Model:       "voclass.net",
	}
}

// Load config settings from JSON file.
func LoadConfig(file string) (c Config, err error) {
	c = DefaultConfig()
	f, err := os.Open(file)
	if err != nil {
		return c, err
	}
	defer f.Close()
	fmt.Println("loading config from", file)
	err = json.NewDecoder(f).Decode(&c)
	return c, err
}

// Save config to JSON file, replacing any previous version.
func (c Config) Save(file string) error {
	tmp := file + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err = enc.Encode(c); err != nil {
		f.Close()
		return err
	}
	f.Close()
	return os.Rename(tmp, file)
}

func (c Config) Fields() []string {
	st := reflect.TypeOf(c)
	fld := make([]string, st.NumField())
	for i := range fld {
		fld[i] = st.Field(i).Name
	}
	return fld
}

func (c Config) Get(key string) interface{} {
	s := reflect.ValueOf(c)
	return s.FieldByName(key).Interface()
}

func (c Config) String() string {
	str := []string{"== Config =="}
	for _, key := range c.Fields() {
		str = append(str, fmt.Sprintf("%-12s: %v", key, c.Get(key)))
	}
	return strings.Join(str, "\n")
}

func (c Config) SetString(key, val string) (Config, error) {
	s := reflect.ValueOf(&c).Elem()
	f := s.FieldByName(key)
	var err error
	switch f.Type().Kind() {
	case reflect.Int, reflect.Int64:
		var x int64
		if x, err = strconv.ParseInt(val, 10, 64); err == nil {
			f.SetInt(x)
		}
	case reflect.Float64:
		var x float64
		if x, err = strconv.ParseFloat(val, 64); err == nil {
			f.SetFloat(x)
		}
	case reflect.String:
		f.SetString(val)
	default:
		return c, fmt.Errorf("invalid type for SetString: %v", f.Type().Kind())
	}
	return c, err
}

func (c Config) SetBool(key string, val bool) (Config, error) {
	s := reflect.ValueOf(&c).Elem()
	f := s.FieldByName(key)
	if f.Type().Kind() == reflect.Bool {
		f.SetBool(val)
		return c, nil
	}
	return c, fmt.Errorf("invalid type for SetBool: %v", f.Type().Kind())
}
