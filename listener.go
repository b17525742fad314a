package kmmage

import "image"

// Listener receives the lifecycle callbacks of a request.
type Listener interface {
	// OnStart is called immediately after Target.OnStart.
	OnStart(req *ImageRequest)
	// OnCancel is called when the request context is cancelled.
	OnCancel(req *ImageRequest)
	OnError(req *ImageRequest, res *ErrorResult)
	OnSuccess(req *ImageRequest, res *SuccessResult)
}

// ListenerFuncs implements Listener with optional functions.
type ListenerFuncs struct {
	Start   func(req *ImageRequest)
	Cancel  func(req *ImageRequest)
	Error   func(req *ImageRequest, res *ErrorResult)
	Success func(req *ImageRequest, res *SuccessResult)
}

func (l ListenerFuncs) OnStart(req *ImageRequest) {
	if l.Start != nil {
		l.Start(req)
	}
}

func (l ListenerFuncs) OnCancel(req *ImageRequest) {
	if l.Cancel != nil {
		l.Cancel(req)
	}
}

func (l ListenerFuncs) OnError(req *ImageRequest, res *ErrorResult) {
	if l.Error != nil {
		l.Error(req, res)
	}
}

func (l ListenerFuncs) OnSuccess(req *ImageRequest, res *SuccessResult) {
	if l.Success != nil {
		l.Success(req, res)
	}
}

// Target receives the images produced while a request runs.
type Target interface {
	// OnStart receives the placeholder, which may be nil.
	OnStart(placeholder image.Image)
	// OnError receives the error image, which may be nil.
	OnError(errImage image.Image)
	OnSuccess(result image.Image)
}

// TargetFuncs implements Target with optional functions.
type TargetFuncs struct {
	Start   func(placeholder image.Image)
	Error   func(errImage image.Image)
	Success func(result image.Image)
}

func (t TargetFuncs) OnStart(placeholder image.Image) {
	if t.Start != nil {
		t.Start(placeholder)
	}
}

func (t TargetFuncs) OnError(errImage image.Image) {
	if t.Error != nil {
		t.Error(errImage)
	}
}

func (t TargetFuncs) OnSuccess(result image.Image) {
	if t.Success != nil {
		t.Success(result)
	}
}
