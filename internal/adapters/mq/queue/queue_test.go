package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a bounded queue", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(2)

		Convey("Tasks round-trip in order", func() {
			So(q.Enqueue(ctx, Task{PersonID: "alice", Skill: "go"}), ShouldBeNil)
			So(q.Enqueue(ctx, Task{PersonID: "bob", Skill: "postgres"}), ShouldBeNil)
			So(q.Size(), ShouldEqual, 2)

			first, err := q.Dequeue(ctx)
			So(err, ShouldBeNil)
			So(first.PersonID, ShouldEqual, "alice")

			second, err := q.Dequeue(ctx)
			So(err, ShouldBeNil)
			So(second.PersonID, ShouldEqual, "bob")
		})

		Convey("A full queue rejects instead of blocking", func() {
			So(q.Enqueue(ctx, Task{PersonID: "a", Skill: "x"}), ShouldBeNil)
			So(q.Enqueue(ctx, Task{PersonID: "b", Skill: "x"}), ShouldBeNil)

			err := q.Enqueue(ctx, Task{PersonID: "c", Skill: "x"})
			So(errors.Is(err, ErrQueueFull), ShouldBeTrue)
		})

		Convey("Dequeue honors context expiry", func() {
			short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
			defer cancel()

			_, err := q.Dequeue(short)
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		})

		Convey("A closed queue rejects new tasks but drains old ones", func() {
			So(q.Enqueue(ctx, Task{PersonID: "a", Skill: "x"}), ShouldBeNil)
			q.Close()

			err := q.Enqueue(ctx, Task{PersonID: "b", Skill: "x"})
			So(errors.Is(err, ErrQueueClosed), ShouldBeTrue)

			task, err := q.Dequeue(ctx)
			So(err, ShouldBeNil)
			So(task.PersonID, ShouldEqual, "a")

			_, err = q.Dequeue(ctx)
			So(errors.Is(err, ErrQueueClosed), ShouldBeTrue)
		})

		Convey("Close is idempotent", func() {
			q.Close()
			So(q.Close, ShouldNotPanic)
		})

		Convey("Capacity is never below one", func() {
			So(NewInMemoryQueue(0).Capacity(), ShouldEqual, 1)
		})
	})
}
