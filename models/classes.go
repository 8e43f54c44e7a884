// Package models - Output class sets for detection models.
package models

import (
	"fmt"
	"image/color"

	"github.com/nvr-ai/go-yolox/models/model"
)

// OutputClass represents one detection label.
type OutputClass struct {
	// The integer index returned by the model.
	Index int
	// The human-readable label.
	Name string
	// The color used when drawing detections of this class.
	Color color.RGBA
}

// OutputClassSet ties a model family to its full list of labels.
type OutputClassSet struct {
	// Class set identifier.
	Family model.Family
	// Classes that are supported, ordered by index.
	Classes []OutputClass
	// nameToIdx for fast lookup by name
	nameToIdx map[string]int
}

// Len returns the number of classes in the set.
func (s *OutputClassSet) Len() int { return len(s.Classes) }

// Class returns the class for a model label.
func (s *OutputClassSet) Class(idx int) (OutputClass, error) {
	if idx < 0 || idx >= len(s.Classes) {
		return OutputClass{}, fmt.Errorf("index %d out of range for family %q", idx, s.Family)
	}
	return s.Classes[idx], nil
}

// Name returns the label for idx, or a placeholder for labels the set does not know.
func (s *OutputClassSet) Name(idx int) string {
	c, err := s.Class(idx)
	if err != nil {
		return fmt.Sprintf("class_%d", idx)
	}
	return c.Name
}

// Color returns the drawing color for idx, white for unknown labels.
func (s *OutputClassSet) Color(idx int) color.RGBA {
	c, err := s.Class(idx)
	if err != nil {
		return color.RGBA{255, 255, 255, 255}
	}
	return c.Color
}

// Index returns the index of the class with the given name.
func (s *OutputClassSet) Index(name string) (int, error) {
	if s.nameToIdx == nil {
		s.nameToIdx = make(map[string]int, len(s.Classes))
		for _, c := range s.Classes {
			s.nameToIdx[c.Name] = c.Index
		}
	}
	idx, ok := s.nameToIdx[name]
	if !ok {
		return -1, fmt.Errorf("name %q not found in family %q", name, s.Family)
	}
	return idx, nil
}

// COCOClasses is the 80 class COCO label set YOLOX is trained on, without a background entry.
var COCOClasses = OutputClassSet{
	Family: model.ModelFamilyCOCO,
	Classes: []OutputClass{
		{0, "person", color.RGBA{0, 114, 189, 255}},
		{1, "bicycle", color.RGBA{217, 83, 25, 255}},
		{2, "car", color.RGBA{237, 177, 32, 255}},
		{3, "motorcycle", color.RGBA{126, 47, 142, 255}},
		{4, "airplane", color.RGBA{119, 172, 48, 255}},
		{5, "bus", color.RGBA{77, 190, 238, 255}},
		{6, "train", color.RGBA{162, 20, 47, 255}},
		{7, "truck", color.RGBA{76, 76, 76, 255}},
		{8, "boat", color.RGBA{153, 153, 153, 255}},
		{9, "traffic light", color.RGBA{255, 0, 0, 255}},
		{10, "fire hydrant", color.RGBA{255, 128, 0, 255}},
		{11, "stop sign", color.RGBA{191, 191, 0, 255}},
		{12, "parking meter", color.RGBA{0, 255, 0, 255}},
		{13, "bench", color.RGBA{0, 0, 255, 255}},
		{14, "bird", color.RGBA{170, 0, 255, 255}},
		{15, "cat", color.RGBA{85, 85, 0, 255}},
		{16, "dog", color.RGBA{85, 170, 0, 255}},
		{17, "horse", color.RGBA{85, 255, 0, 255}},
		{18, "sheep", color.RGBA{170, 85, 0, 255}},
		{19, "cow", color.RGBA{170, 170, 0, 255}},
		{20, "elephant", color.RGBA{170, 255, 0, 255}},
		{21, "bear", color.RGBA{255, 85, 0, 255}},
		{22, "zebra", color.RGBA{255, 170, 0, 255}},
		{23, "giraffe", color.RGBA{255, 255, 0, 255}},
		{24, "backpack", color.RGBA{0, 85, 128, 255}},
		{25, "umbrella", color.RGBA{0, 170, 128, 255}},
		{26, "handbag", color.RGBA{0, 255, 128, 255}},
		{27, "tie", color.RGBA{85, 0, 128, 255}},
		{28, "suitcase", color.RGBA{85, 85, 128, 255}},
		{29, "frisbee", color.RGBA{85, 170, 128, 255}},
		{30, "skis", color.RGBA{85, 255, 128, 255}},
		{31, "snowboard", color.RGBA{170, 0, 128, 255}},
		{32, "sports ball", color.RGBA{170, 85, 128, 255}},
		{33, "kite", color.RGBA{170, 170, 128, 255}},
		{34, "baseball bat", color.RGBA{170, 255, 128, 255}},
		{35, "baseball glove", color.RGBA{255, 0, 128, 255}},
		{36, "skateboard", color.RGBA{255, 85, 128, 255}},
		{37, "surfboard", color.RGBA{255, 170, 128, 255}},
		{38, "tennis racket", color.RGBA{255, 255, 128, 255}},
		{39, "bottle", color.RGBA{0, 85, 255, 255}},
		{40, "wine glass", color.RGBA{0, 170, 255, 255}},
		{41, "cup", color.RGBA{0, 255, 255, 255}},
		{42, "fork", color.RGBA{85, 0, 255, 255}},
		{43, "knife", color.RGBA{85, 85, 255, 255}},
		{44, "spoon", color.RGBA{85, 170, 255, 255}},
		{45, "bowl", color.RGBA{85, 255, 255, 255}},
		{46, "banana", color.RGBA{170, 0, 255, 255}},
		{47, "apple", color.RGBA{170, 85, 255, 255}},
		{48, "sandwich", color.RGBA{170, 170, 255, 255}},
		{49, "orange", color.RGBA{170, 255, 255, 255}},
		{50, "broccoli", color.RGBA{255, 0, 255, 255}},
		{51, "carrot", color.RGBA{255, 85, 255, 255}},
		{52, "hot dog", color.RGBA{255, 170, 255, 255}},
		{53, "pizza", color.RGBA{85, 0, 0, 255}},
		{54, "donut", color.RGBA{128, 0, 0, 255}},
		{55, "cake", color.RGBA{170, 0, 0, 255}},
		{56, "chair", color.RGBA{212, 0, 0, 255}},
		{57, "couch", color.RGBA{255, 0, 0, 255}},
		{58, "potted plant", color.RGBA{0, 43, 0, 255}},
		{59, "bed", color.RGBA{0, 85, 0, 255}},
		{60, "dining table", color.RGBA{0, 128, 0, 255}},
		{61, "toilet", color.RGBA{0, 170, 0, 255}},
		{62, "tv", color.RGBA{0, 212, 0, 255}},
		{63, "laptop", color.RGBA{0, 255, 0, 255}},
		{64, "mouse", color.RGBA{0, 0, 43, 255}},
		{65, "remote", color.RGBA{0, 0, 85, 255}},
		{66, "keyboard", color.RGBA{0, 0, 128, 255}},
		{67, "cell phone", color.RGBA{0, 0, 170, 255}},
		{68, "microwave", color.RGBA{0, 0, 212, 255}},
		{69, "oven", color.RGBA{0, 0, 255, 255}},
		{70, "toaster", color.RGBA{0, 0, 0, 255}},
		{71, "sink", color.RGBA{36, 36, 36, 255}},
		{72, "refrigerator", color.RGBA{73, 73, 73, 255}},
		{73, "book", color.RGBA{109, 109, 109, 255}},
		{74, "clock", color.RGBA{146, 146, 146, 255}},
		{75, "vase", color.RGBA{182, 182, 182, 255}},
		{76, "scissors", color.RGBA{219, 219, 219, 255}},
		{77, "teddy bear", color.RGBA{0, 114, 189, 255}},
		{78, "hair drier", color.RGBA{80, 183, 189, 255}},
		{79, "toothbrush", color.RGBA{128, 128, 0, 255}},
	},
}
