package coords

import "fmt"

// The conversion functions below are the only place a Rect changes its
// space tag. All of them are exact affine maps; round-tripping through
// any pair reproduces the input up to floating-point epsilon.

// DocumentToDisplay flips a document-point rect to display points.
// pageHeight is the page height in document points.
func DocumentToDisplay(r Rect, pageHeight float64) (Rect, error) {
	if r.Space != SpaceDocument {
		return Rect{}, spaceError("DocumentToDisplay", SpaceDocument, r.Space)
	}
	return DisplayRect(r.X, pageHeight-r.Y-r.H, r.W, r.H), nil
}

// DisplayToDocument flips a display-point rect back to document points.
func DisplayToDocument(r Rect, pageHeight float64) (Rect, error) {
	if r.Space != SpaceDisplay {
		return Rect{}, spaceError("DisplayToDocument", SpaceDisplay, r.Space)
	}
	return DocumentRect(r.X, pageHeight-r.Y-r.H, r.W, r.H), nil
}

// DisplayToDevice scales a display-point rect to device pixels at dpi.
func DisplayToDevice(r Rect, dpi float64) (Rect, error) {
	if r.Space != SpaceDisplay {
		return Rect{}, spaceError("DisplayToDevice", SpaceDisplay, r.Space)
	}
	s := dpi / 72.0
	return DeviceRect(r.X*s, r.Y*s, r.W*s, r.H*s, dpi), nil
}

// DeviceToDisplay scales a device-pixel rect back to display points.
func DeviceToDisplay(r Rect) (Rect, error) {
	if r.Space != SpaceDevice {
		return Rect{}, spaceError("DeviceToDisplay", SpaceDevice, r.Space)
	}
	if r.DPI <= 0 {
		return Rect{}, fmt.Errorf("DeviceToDisplay: rect carries no DPI")
	}
	s := 72.0 / r.DPI
	return DisplayRect(r.X*s, r.Y*s, r.W*s, r.H*s), nil
}

// DocumentToDevice maps a document-point rect to device pixels.
func DocumentToDevice(r Rect, pageHeight, dpi float64) (Rect, error) {
	disp, err := DocumentToDisplay(r, pageHeight)
	if err != nil {
		return Rect{}, err
	}
	return DisplayToDevice(disp, dpi)
}

// DeviceToDocument maps a device-pixel rect to document points.
func DeviceToDocument(r Rect, pageHeight float64) (Rect, error) {
	disp, err := DeviceToDisplay(r)
	if err != nil {
		return Rect{}, err
	}
	return DisplayToDocument(disp, pageHeight)
}

// ImageSelectionToDocumentPoints converts a selection made on a page
// image rendered at dpi into document points. It is the exact inverse
// of DocumentPointsToImageSelection.
func ImageSelectionToDocumentPoints(r Rect, pageHeight float64) (Rect, error) {
	return DeviceToDocument(r, pageHeight)
}

// DocumentPointsToImageSelection converts a document-point rect into
// pixel coordinates on a page image rendered at dpi.
func DocumentPointsToImageSelection(r Rect, pageHeight, dpi float64) (Rect, error) {
	return DocumentToDevice(r, pageHeight, dpi)
}

func spaceError(op string, want, got Space) error {
	return fmt.Errorf("%s: rect is in %s space, want %s", op, got, want)
}
